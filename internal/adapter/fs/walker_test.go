package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.pdf", "sub/c.txt", "sub/skip.png", "vendor/d.txt")

	w := NewWalker([]string{"**/*.txt", "**/*.pdf"}, []string{"vendor/**"})
	files, err := w.Resolve([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
}

func TestResolvePlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "only.bin")

	// Explicit file arguments bypass the include patterns.
	w := NewWalker([]string{"**/*.txt"}, nil)
	files, err := w.Resolve([]string{filepath.Join(dir, "only.bin")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %v", files)
	}
}

func TestResolveDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")
	path := filepath.Join(dir, "a.txt")

	w := NewWalker(nil, nil)
	files, err := w.Resolve([]string{path, path})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 deduplicated file, got %v", files)
	}
}

func TestResolveGlob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "one.txt", "two.txt", "three.md")

	w := NewWalker(nil, nil)
	files, err := w.Resolve([]string{filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files from glob, got %v", files)
	}
}
