package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docrag/internal/domain"
)

// FileStore persists entries as one JSON array on disk. Writes replace the
// whole file through a write-aside temp file and an atomic rename, so a
// reader never observes a half-written state. An RWMutex serializes
// mutations against snapshot reads; the in-memory slice is the snapshot and
// the file is its durable image.
type FileStore struct {
	path string

	mu        sync.RWMutex
	entries   []domain.Entry
	dimension int
}

// OpenFileStore loads the collection at path. A missing or empty file is an
// empty collection; content that is not a well-formed entry array fails
// with domain.ErrCorruptStore.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrStorage, path, err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStore, path, err)
	}
	for i, e := range entries {
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("%w: %s: entry %d has no vector", domain.ErrCorruptStore, path, i)
		}
		if s.dimension == 0 {
			s.dimension = len(e.Vector)
		} else if len(e.Vector) != s.dimension {
			return nil, fmt.Errorf("%w: %s: entry %d has dimension %d, store has %d",
				domain.ErrCorruptStore, path, i, len(e.Vector), s.dimension)
		}
	}
	s.entries = entries
	return s, nil
}

// Load returns a copy of the current snapshot in insertion order.
func (s *FileStore) Load() ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Entry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot, nil
}

// Append merges entries and persists the whole updated collection before
// returning. On any failure the store, in memory and on disk, is unchanged.
func (s *FileStore) Append(entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: entry %s[%d] has no vector", domain.ErrDimensionMismatch, e.Filename, e.ChunkIndex)
		}
		if dim == 0 {
			dim = len(e.Vector)
		} else if len(e.Vector) != dim {
			return fmt.Errorf("%w: entry %s[%d] has dimension %d, store has %d",
				domain.ErrDimensionMismatch, e.Filename, e.ChunkIndex, len(e.Vector), dim)
		}
	}

	merged := make([]domain.Entry, 0, len(s.entries)+len(entries))
	merged = append(merged, s.entries...)
	merged = append(merged, entries...)

	if err := s.persist(merged); err != nil {
		return err
	}
	s.entries = merged
	s.dimension = dim
	return nil
}

// Clear replaces the content with the empty collection.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist([]domain.Entry{}); err != nil {
		return err
	}
	s.entries = nil
	s.dimension = 0
	return nil
}

func (s *FileStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *FileStore) Dimension() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension, nil
}

func (s *FileStore) Close() error {
	return nil
}

// persist writes entries to a temp file in the target directory and renames
// it over the store file. Rename within one directory is atomic on POSIX
// systems, so the store file always holds a complete serialization.
func (s *FileStore) persist(entries []domain.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encoding entries: %v", domain.ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrStorage, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", domain.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: syncing temp file: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", domain.ErrStorage, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", domain.ErrStorage, s.path, err)
	}
	return nil
}
