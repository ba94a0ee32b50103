package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/embedding"
	"docrag/internal/adapter/extractor"
	"docrag/internal/adapter/retriever"
	"docrag/internal/adapter/store"
	"docrag/internal/domain"
	"docrag/internal/port"
)

func newIngestUseCase(t *testing.T, st port.VectorStore, emb port.Embedder, limits IngestLimits) *IngestUseCase {
	t.Helper()
	chk, err := chunker.NewWindowChunker(20, 5)
	if err != nil {
		t.Fatal(err)
	}
	return NewIngestUseCase(st, extractor.New(), chk, emb, limits, zerolog.Nop())
}

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.OpenFileStore(filepath.Join(t.TempDir(), "vectors.json"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIngestSingleFile(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(8), IngestLimits{})

	files := []FileInput{{Filename: "doc.txt", Data: []byte(strings.Repeat("some text ", 10))}}
	result, err := u.Ingest(context.Background(), files, "default", nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.AddedChunks == 0 {
		t.Fatal("no chunks added")
	}
	if len(result.Files) != 1 || result.Files[0].Status != "ok" {
		t.Fatalf("unexpected outcomes: %+v", result.Files)
	}

	entries, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != result.AddedChunks {
		t.Errorf("store holds %d entries, result reports %d", len(entries), result.AddedChunks)
	}
	for i, e := range entries {
		if e.ChunkIndex != i {
			t.Errorf("entry %d has chunk index %d", i, e.ChunkIndex)
		}
		if e.Collection != "default" {
			t.Errorf("entry %d missing collection label", i)
		}
		if len(e.Vector) != 8 {
			t.Errorf("entry %d has dimension %d, want 8", i, len(e.Vector))
		}
	}
}

func TestIngestBatchIsolation(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(8), IngestLimits{})

	files := []FileInput{
		{Filename: "valid.txt", Data: []byte(strings.Repeat("good content ", 5))},
		{Filename: "bad.unsupported", Data: []byte("whatever")},
	}
	result, err := u.Ingest(context.Background(), files, "", nil)
	if err != nil {
		t.Fatalf("batch with one valid file must succeed, got %v", err)
	}

	if result.Files[0].Status != "ok" || result.Files[0].Chunks == 0 {
		t.Errorf("valid.txt outcome: %+v", result.Files[0])
	}
	if result.Files[1].Status != "failed" || result.Files[1].Error == "" {
		t.Errorf("bad.unsupported outcome: %+v", result.Files[1])
	}

	entries, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Filename != "valid.txt" {
			t.Errorf("unexpected entry from %s", e.Filename)
		}
	}
	if len(entries) != result.AddedChunks {
		t.Errorf("store holds %d entries, result reports %d", len(entries), result.AddedChunks)
	}
}

func TestIngestAllFilesFailed(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(8), IngestLimits{})

	files := []FileInput{
		{Filename: "a.png", Data: []byte("x")},
		{Filename: "b.zip", Data: []byte("y")},
	}
	result, err := u.Ingest(context.Background(), files, "", nil)
	if err == nil {
		t.Fatal("expected error when every file fails")
	}
	if result == nil || len(result.Files) != 2 {
		t.Fatalf("per-file outcomes missing: %+v", result)
	}

	n, _ := st.Count()
	if n != 0 {
		t.Errorf("store not empty after failed batch: %d entries", n)
	}
}

func TestIngestValidation(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(4), IngestLimits{MaxFiles: 2, MaxFileBytes: 10})

	cases := []struct {
		name  string
		files []FileInput
	}{
		{"empty batch", nil},
		{"too many files", []FileInput{
			{Filename: "a.txt", Data: []byte("a")},
			{Filename: "b.txt", Data: []byte("b")},
			{Filename: "c.txt", Data: []byte("c")},
		}},
		{"oversized file", []FileInput{{Filename: "big.txt", Data: []byte(strings.Repeat("x", 11))}}},
		{"nameless file", []FileInput{{Data: []byte("x")}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Ingest(context.Background(), tc.files, "", nil)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestIngestEmptyFileSucceedsWithZeroChunks(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(4), IngestLimits{})

	result, err := u.Ingest(context.Background(), []FileInput{{Filename: "empty.txt", Data: nil}}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Files[0].Status != "ok" || result.Files[0].Chunks != 0 {
		t.Errorf("empty file outcome: %+v", result.Files[0])
	}
}

func TestIngestDimensionMismatchIsFatal(t *testing.T) {
	st := newFileStore(t)
	// Establish dimensionality 5 before the batch.
	if err := st.Append([]domain.Entry{{Filename: "seed.txt", ChunkIndex: 0, Text: "t", Vector: make([]float32, 5)}}); err != nil {
		t.Fatal(err)
	}

	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(8), IngestLimits{})
	files := []FileInput{
		{Filename: "a.txt", Data: []byte("some content here")},
		{Filename: "b.txt", Data: []byte("more content here")},
	}
	_, err := u.Ingest(context.Background(), files, "", nil)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected fatal ErrDimensionMismatch, got %v", err)
	}

	n, _ := st.Count()
	if n != 1 {
		t.Errorf("store changed after rejected batch: %d entries", n)
	}
}

func TestIngestEmbeddingFailureIsPerFile(t *testing.T) {
	st := newFileStore(t)
	emb := &flakyEmbedder{failOn: "OUTAGE", dim: 4}
	u := newIngestUseCase(t, st, emb, IngestLimits{})

	files := []FileInput{
		{Filename: "broken.txt", Data: []byte("OUTAGE here")},
		{Filename: "fine.txt", Data: []byte("this one works")},
	}
	result, err := u.Ingest(context.Background(), files, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Files[0].Status != "failed" {
		t.Errorf("broken.txt outcome: %+v", result.Files[0])
	}
	if result.Files[1].Status != "ok" {
		t.Errorf("fine.txt outcome: %+v", result.Files[1])
	}
}

func TestIngestCancelled(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(4), IngestLimits{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Ingest(ctx, []FileInput{{Filename: "a.txt", Data: []byte("text")}}, "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	n, _ := st.Count()
	if n != 0 {
		t.Errorf("cancelled ingest mutated the store: %d entries", n)
	}
}

func TestIngestProgressCallback(t *testing.T) {
	st := newFileStore(t)
	u := newIngestUseCase(t, st, embedding.NewMockEmbedder(4), IngestLimits{})

	var calls []int
	progress := func(processed, total int, _ string) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		calls = append(calls, processed)
	}

	files := []FileInput{
		{Filename: "a.txt", Data: []byte("aaa")},
		{Filename: "b.txt", Data: []byte("bbb")},
	}
	if _, err := u.Ingest(context.Background(), files, "", progress); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestConcurrentQueriesDuringIngest(t *testing.T) {
	st := newFileStore(t)
	emb := embedding.NewMockEmbedder(8)
	u := newIngestUseCase(t, st, emb, IngestLimits{})
	r := retriever.NewCosineRetriever(st)

	files := []FileInput{{Filename: "doc.txt", Data: []byte(strings.Repeat("interesting text ", 20))}}

	var wg sync.WaitGroup
	start := make(chan struct{})
	query := make([]float32, 8)
	query[0] = 1

	var observed sync.Map
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 20; j++ {
				results, err := r.Retrieve(query, 1000, "")
				if err != nil {
					t.Error(err)
					return
				}
				observed.Store(len(results), true)
			}
		}()
	}

	close(start)
	result, err := u.Ingest(context.Background(), files, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	// Every observation must be the empty pre-ingest store or the complete
	// post-ingest store; a partial count means a reader saw a half-applied
	// append.
	observed.Range(func(key, _ any) bool {
		n := key.(int)
		if n != 0 && n != result.AddedChunks {
			t.Errorf("observed partial store with %d entries (full store has %d)", n, result.AddedChunks)
		}
		return true
	})
}

// flakyEmbedder fails whenever an input text contains the marker substring.
type flakyEmbedder struct {
	failOn string
	dim    int
}

func (e *flakyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if strings.Contains(text, e.failOn) {
			return nil, errors.New("simulated embedding outage")
		}
	}
	return embedding.NewMockEmbedder(e.dim).Embed(ctx, texts)
}

func (e *flakyEmbedder) Dimension() int   { return e.dim }
func (e *flakyEmbedder) ModelName() string { return "flaky" }
