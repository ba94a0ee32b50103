package port

import "docrag/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document, text string) ([]domain.Chunk, error)
}
