package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// FileInput is one uploaded file in an ingestion batch.
type FileInput struct {
	Filename string
	Data     []byte
}

// IngestLimits bounds a batch before any work starts.
type IngestLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// ProgressFunc reports per-file progress to the caller.
type ProgressFunc func(processed, total int, filename string)

// IngestUseCase runs the ingestion pipeline: extract, normalize, chunk,
// embed, persist. Files are isolated from each other; one broken file never
// blocks its siblings.
type IngestUseCase struct {
	store     port.VectorStore
	extractor port.Extractor
	chunker   port.Chunker
	embedder  port.Embedder
	limits    IngestLimits
	log       zerolog.Logger
}

func NewIngestUseCase(
	store port.VectorStore,
	extractor port.Extractor,
	chunker port.Chunker,
	embedder port.Embedder,
	limits IngestLimits,
	log zerolog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		limits:    limits,
		log:       log.With().Str("component", "ingest").Logger(),
	}
}

// Ingest processes a batch of files under the collection label. Entries for
// each file are appended to the store in one durable call once that file's
// embeddings arrived; the embedding calls themselves run without any store
// lock held. The batch fails outright only if every file failed.
func (u *IngestUseCase) Ingest(ctx context.Context, files []FileInput, collection string, progress ProgressFunc) (*domain.IngestResult, error) {
	if err := u.validate(files); err != nil {
		return nil, err
	}

	result := &domain.IngestResult{Files: make([]domain.FileOutcome, 0, len(files))}
	succeeded := 0

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		added, err := u.ingestFile(ctx, file, collection)
		if err != nil {
			// Extraction and embedding failures stay scoped to their file;
			// store failures and cancellation abort the whole batch.
			if isFatal(err) {
				return nil, err
			}
			u.log.Warn().Err(err).Str("file", file.Filename).Msg("file failed")
			result.Files = append(result.Files, domain.FileOutcome{
				Filename: file.Filename,
				Status:   "failed",
				Error:    err.Error(),
			})
		} else {
			succeeded++
			result.AddedChunks += added
			result.Files = append(result.Files, domain.FileOutcome{
				Filename: file.Filename,
				Status:   "ok",
				Chunks:   added,
			})
		}

		if progress != nil {
			progress(i+1, len(files), file.Filename)
		}
	}

	if succeeded == 0 {
		return result, fmt.Errorf("all %d files failed", len(files))
	}

	u.log.Info().Int("files", succeeded).Int("chunks", result.AddedChunks).Msg("batch ingested")
	return result, nil
}

// isFatal reports whether err must abort the batch instead of being
// recorded as a per-file outcome.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrStorage) ||
		errors.Is(err, domain.ErrDimensionMismatch) ||
		errors.Is(err, domain.ErrCorruptStore) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (u *IngestUseCase) validate(files []FileInput) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}
	if u.limits.MaxFiles > 0 && len(files) > u.limits.MaxFiles {
		return fmt.Errorf("%w: batch of %d files exceeds limit of %d", domain.ErrValidation, len(files), u.limits.MaxFiles)
	}
	for _, f := range files {
		if f.Filename == "" {
			return fmt.Errorf("%w: file without a name", domain.ErrValidation)
		}
		if u.limits.MaxFileBytes > 0 && int64(len(f.Data)) > u.limits.MaxFileBytes {
			return fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrValidation, f.Filename, len(f.Data), u.limits.MaxFileBytes)
		}
	}
	return nil
}

// ingestFile runs the pipeline for one file and returns the number of
// chunks persisted.
func (u *IngestUseCase) ingestFile(ctx context.Context, file FileInput, collection string) (int, error) {
	text, err := u.extractor.Extract(file.Filename, file.Data)
	if err != nil {
		return 0, err
	}

	doc := domain.Document{
		Filename:   file.Filename,
		UploadedAt: time.Now(),
	}
	chunks, err := u.chunker.Chunk(doc, normalizeText(text))
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingService, len(vectors), len(chunks))
	}

	entries := make([]domain.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.Entry{
			Filename:   c.Filename,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Vector:     vectors[i],
			Collection: collection,
		}
	}

	if err := ctx.Err(); err != nil {
		// Cancelled before the merge: nothing was persisted for this file.
		return 0, err
	}
	if err := u.store.Append(entries); err != nil {
		return 0, err
	}

	u.log.Debug().Str("file", file.Filename).Int("chunks", len(entries)).Msg("file ingested")
	return len(entries), nil
}
