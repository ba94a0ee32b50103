package port

import "docrag/internal/domain"

// VectorStore is a durable, single-writer/multi-reader collection of
// chunk+vector entries. Entry order equals insertion order.
type VectorStore interface {
	// Load returns a point-in-time snapshot of all entries. An absent or
	// empty backing store yields an empty slice.
	Load() ([]domain.Entry, error)

	// Append merges entries into the collection and durably persists the
	// updated collection before returning. It fails with
	// domain.ErrDimensionMismatch, leaving the store unchanged, if any
	// vector's length differs from the store's established dimensionality.
	Append(entries []domain.Entry) error

	// Clear atomically replaces the content with the empty collection.
	Clear() error

	// Count returns the number of stored entries.
	Count() (int, error)

	// Dimension returns the established vector dimensionality, or 0 for an
	// empty store.
	Dimension() (int, error)

	Close() error
}
