package port

import "docrag/internal/domain"

// Retriever ranks stored entries against a query vector.
type Retriever interface {
	// Retrieve returns the topK most similar entries in descending score
	// order. An empty collection label matches every entry.
	Retrieve(query []float32, topK int, collection string) ([]domain.ScoredEntry, error)
}
