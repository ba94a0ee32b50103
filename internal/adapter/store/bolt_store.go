package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// BoltStore keeps the collection in a bbolt database. Entries are keyed by
// a big-endian insertion sequence so bucket iteration order equals
// insertion order; bbolt transactions provide the atomicity that the file
// store gets from rename.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening bolt db: %v", domain.ErrStorage, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("creating bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load() ([]domain.Entry, error) {
	var entries []domain.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(k, v []byte) error {
			var e domain.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("%w: entry %x: %v", domain.ErrCorruptStore, k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *BoltStore) Append(entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		dim := int(decodeUint64(meta.Get(keyDimension)))

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

		b := tx.Bucket(bucketEntries)
		for _, e := range entries {
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrStorage, err)
			}
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("%w: encoding entry: %v", domain.ErrStorage, err)
			}
			if err := b.Put(encodeUint64(seq), data); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrStorage, err)
			}
		}
		if err := meta.Put(keyDimension, encodeUint64(uint64(dim))); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		return nil
	})
}

func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		if _, err := tx.CreateBucket(bucketEntries); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		if err := tx.Bucket(bucketMeta).Delete(keyDimension); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		return nil
	})
}

func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Dimension() (int, error) {
	var dim int
	err := s.db.View(func(tx *bbolt.Tx) error {
		dim = int(decodeUint64(tx.Bucket(bucketMeta).Get(keyDimension)))
		return nil
	})
	return dim, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
