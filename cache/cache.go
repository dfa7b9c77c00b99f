package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	bolt "go.etcd.io/bbolt"
)

// Path returns a unique local cache file path for the given root string, using its SHA-256 hash.
func Path(root string) (string, error) {
	name := Hash([]byte(root))

	path, err := xdg.CacheFile(fmt.Sprintf("isorted/sorted-cache/%v.db", name))
	if err != nil {
		return "", fmt.Errorf("could not resolve local path for the cache: %w", err)
	}

	return path, nil
}

// Open initialises and opens a Bolt database for the specified root path.
func Open(root string) (*bolt.DB, error) {
	path, err := Path(root)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db at %s: %w", path, err)
	}

	// ensure bucket exist
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := BucketPaths(tx)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return db, nil
}

// Remove deletes the db for the given root, if any.
func Remove(root string) error {
	path, err := Path(root)
	if err != nil {
		return err
	}

	// A process with the db already open keeps working, the disk space is reclaimed once it exits.
	if err = os.Remove(path); !(err == nil || os.IsNotExist(err)) {
		return fmt.Errorf("failed to remove cache db at %s: %w", path, err)
	}

	return nil
}

// Hash returns the hex encoded SHA-256 digest of the given parts, each followed by a NUL separator.
func Hash(parts ...[]byte) string {
	h := sha256.New()

	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
