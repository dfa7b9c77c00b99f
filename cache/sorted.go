package cache

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
)

// Sorted remembers which files were left sorted by a given command line, so they can be skipped until either
// their contents or the command line change.
type Sorted struct {
	db  *bolt.DB
	log *log.Logger
}

// NewSorted wraps an open db.
func NewSorted(db *bolt.DB) *Sorted {
	return &Sorted{
		db:  db,
		log: log.WithPrefix("cache"),
	}
}

// IsSorted reports whether path was recorded as sorted with exactly these contents and command.
func (s *Sorted) IsSorted(path string, content []byte, command string) (bool, error) {
	var sorted bool

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := BucketPaths(tx)
		if err != nil {
			return err
		}

		entry, err := bucket.Get(path)
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		sorted = entry.Command == command && entry.Content == Hash(content)

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry for %s: %w", path, err)
	}

	if sorted {
		s.log.Debugf("already sorted: %s", path)
	}

	return sorted, nil
}

// Record marks path as sorted with these contents and command.
func (s *Sorted) Record(path string, content []byte, command string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := BucketPaths(tx)
		if err != nil {
			return err
		}

		return bucket.Put(path, &Entry{Content: Hash(content), Command: command})
	})
}

// Forget removes any record of path.
func (s *Sorted) Forget(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := BucketPaths(tx)
		if err != nil {
			return err
		}

		return bucket.Delete(path)
	})
}

// Close closes the underlying db.
func (s *Sorted) Close() error {
	return s.db.Close()
}
