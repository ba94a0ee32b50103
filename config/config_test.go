package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 800 {
		t.Errorf("default chunk size = %d, want 800", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 150 {
		t.Errorf("default overlap = %d, want 150", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		t.Error("default overlap must be smaller than chunk size")
	}
	if cfg.Store.Type != "file" {
		t.Errorf("default store type = %q, want file", cfg.Store.Type)
	}
	if cfg.Retrieve.TopK <= 0 {
		t.Error("default top_k must be positive")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chunking.ChunkSize != DefaultConfig().Chunking.ChunkSize {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")
	content := `
chunking:
  chunk_size: 500
  chunk_overlap: 50
store:
  type: bolt
  path: /tmp/test.db
retrieve:
  top_k: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("chunk_size = %d, want 500", cfg.Chunking.ChunkSize)
	}
	if cfg.Store.Type != "bolt" {
		t.Errorf("store type = %q, want bolt", cfg.Store.Type)
	}
	if cfg.Retrieve.TopK != 7 {
		t.Errorf("top_k = %d, want 7", cfg.Retrieve.TopK)
	}
	// Untouched sections keep their defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("embedding model = %q", cfg.Embedding.Model)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")
	if err := os.WriteFile(path, []byte("chunking: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 9
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieve.TopK != 9 {
		t.Errorf("top_k after round trip = %d, want 9", loaded.Retrieve.TopK)
	}
}
