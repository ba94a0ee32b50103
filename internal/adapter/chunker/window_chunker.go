package chunker

import (
	"fmt"

	"docrag/internal/domain"
)

// WindowChunker splits normalized text into fixed-size rune windows with a
// configurable overlap between consecutive chunks.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker validates the window parameters. size must be positive
// and overlap must satisfy 0 <= overlap < size.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrValidation, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrValidation, size, overlap)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk produces the ordered chunk sequence for text. Chunk i starts at
// i*(size-overlap); the final chunk may be shorter than size. Offsets are
// rune offsets so multi-byte text never splits inside a code point. Empty
// text yields no chunks.
func (c *WindowChunker) Chunk(doc domain.Document, text string) ([]domain.Chunk, error) {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start := 0; start < n; start += step {
		end := start + c.size
		if end > n {
			end = n
		}
		chunks = append(chunks, domain.Chunk{
			Filename:   doc.Filename,
			ChunkIndex: len(chunks),
			Text:       string(runes[start:end]),
			Start:      start,
			End:        end,
		})
		if end == n {
			break
		}
	}
	return chunks, nil
}
