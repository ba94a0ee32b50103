package retriever

import (
	"fmt"
	"math"
	"sort"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// CosineRetriever scores every stored entry against the query vector with
// cosine similarity and returns the top-k. Brute force, O(n*d); fine for a
// local store, an index structure is deliberately out of scope.
type CosineRetriever struct {
	store port.VectorStore
}

func NewCosineRetriever(store port.VectorStore) *CosineRetriever {
	return &CosineRetriever{store: store}
}

// Retrieve returns up to topK entries in descending similarity order. Ties
// keep insertion order, so repeated calls against an unchanged store return
// identical results.
func (r *CosineRetriever) Retrieve(query []float32, topK int, collection string) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrValidation, topK)
	}

	entries, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredEntry, 0, len(entries))
	for _, e := range entries {
		if collection != "" && e.Collection != collection {
			continue
		}
		scored = append(scored, domain.ScoredEntry{
			Entry: e,
			Score: cosineSimilarity(query, e.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
// A zero norm (or a length mismatch) scores 0 rather than failing.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
