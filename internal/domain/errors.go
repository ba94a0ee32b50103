package domain

import "errors"

// Error kinds used across the ingestion and query paths. Callers wrap these
// with fmt.Errorf("%w: ...") and match them with errors.Is.
var (
	// ErrValidation marks a request rejected before any work started.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFormat marks a file whose format has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction marks a file whose extractor failed on its content.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbeddingService marks a failed call to the embedding provider.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrGenerationService marks a failed call to the answer generator.
	ErrGenerationService = errors.New("generation service error")

	// ErrDimensionMismatch marks an append whose vectors do not match the
	// store's established dimensionality. The store is left unchanged.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptStore marks a backing store whose content is not well-formed.
	ErrCorruptStore = errors.New("corrupt vector store")

	// ErrStorage marks an I/O failure while persisting the store.
	ErrStorage = errors.New("storage failure")

	// ErrQueryFailed marks a query aborted before retrieval, typically
	// because the question could not be embedded.
	ErrQueryFailed = errors.New("query failed")
)
