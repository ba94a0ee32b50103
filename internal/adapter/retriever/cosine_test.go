package retriever

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"docrag/internal/adapter/store"
	"docrag/internal/domain"
)

func newTestStore(t *testing.T, entries []domain.Entry) *store.FileStore {
	t.Helper()
	s, err := store.OpenFileStore(filepath.Join(t.TempDir(), "vectors.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) > 0 {
		if err := s.Append(entries); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func entry(filename string, idx int, vec ...float32) domain.Entry {
	return domain.Entry{Filename: filename, ChunkIndex: idx, Text: "text", Vector: vec}
}

func TestRetrieveExactMatch(t *testing.T) {
	entries := []domain.Entry{
		entry("a.txt", 0, 1, 0, 0),
		entry("a.txt", 1, 0, 1, 0),
		entry("a.txt", 2, 0.3, 0.8, 0.5),
		entry("b.txt", 0, 0, 0, 1),
		entry("b.txt", 1, 1, 1, 1),
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	results, err := r.Retrieve([]float32{0.3, 0.8, 0.5}, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Entry.ChunkIndex != 2 || results[0].Entry.Filename != "a.txt" {
		t.Errorf("top hit is %s[%d], want a.txt[2]", results[0].Entry.Filename, results[0].Entry.ChunkIndex)
	}
	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("self-similarity = %f, want ~1.0", results[0].Score)
	}
}

func TestRetrieveDeterminism(t *testing.T) {
	entries := []domain.Entry{
		entry("a.txt", 0, 1, 2, 3),
		entry("a.txt", 1, 3, 2, 1),
		entry("a.txt", 2, 2, 2, 2),
		entry("a.txt", 3, -1, 0, 1),
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	query := []float32{1, 1, 1}
	first, err := r.Retrieve(query, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Retrieve(query, 4, "")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d returned different results", i)
		}
	}
}

func TestRetrieveTieOrder(t *testing.T) {
	// Parallel vectors all score exactly 1; insertion order must decide.
	entries := []domain.Entry{
		entry("a.txt", 0, 1, 0),
		entry("a.txt", 1, 2, 0),
		entry("a.txt", 2, 3, 0),
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	results, err := r.Retrieve([]float32{5, 0}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Entry.ChunkIndex != i {
			t.Errorf("position %d holds chunk %d, want %d", i, res.Entry.ChunkIndex, i)
		}
	}
}

func TestRetrieveTopKLargerThanStore(t *testing.T) {
	entries := []domain.Entry{
		entry("a.txt", 0, 1, 0),
		entry("a.txt", 1, 0, 1),
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	results, err := r.Retrieve([]float32{1, 1}, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(results))
	}
}

func TestRetrieveEmptyStore(t *testing.T) {
	r := NewCosineRetriever(newTestStore(t, nil))

	results, err := r.Retrieve([]float32{1, 0}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty store, got %d", len(results))
	}
}

func TestRetrieveZeroNorm(t *testing.T) {
	entries := []domain.Entry{
		entry("a.txt", 0, 0, 0),
		entry("a.txt", 1, 1, 1),
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	// Zero query vector: every score is 0, not an error.
	results, err := r.Retrieve([]float32{0, 0}, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range results {
		if res.Score != 0 {
			t.Errorf("zero-norm similarity = %f, want 0", res.Score)
		}
	}
}

func TestRetrieveCollectionFilter(t *testing.T) {
	entries := []domain.Entry{
		{Filename: "a.txt", ChunkIndex: 0, Text: "t", Vector: []float32{1, 0}, Collection: "alpha"},
		{Filename: "b.txt", ChunkIndex: 0, Text: "t", Vector: []float32{1, 0}, Collection: "beta"},
	}
	r := NewCosineRetriever(newTestStore(t, entries))

	results, err := r.Retrieve([]float32{1, 0}, 10, "beta")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Entry.Filename != "b.txt" {
		t.Errorf("collection filter returned %+v", results)
	}
}

func TestRetrieveInvalidTopK(t *testing.T) {
	r := NewCosineRetriever(newTestStore(t, nil))
	if _, err := r.Retrieve([]float32{1}, 0, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for top_k=0, got %v", err)
	}
}
