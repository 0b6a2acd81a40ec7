package recipe

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DatabaseName is the build record database inside the install area.
const DatabaseName = "recipes.db"

// Store persists build records, one bucket per platform keyed by recipe name.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if needed) the record database in installArea.
func OpenStore(installArea string) (*Store, error) {
	path := filepath.Join(installArea, DatabaseName)
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record of a recipe on platform, or nil if it was never built.
func (s *Store) Get(platform, name string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(platform))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction.
		r, err := UnmarshalRecord(append([]byte(nil), data...))
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read record of %s: %w", name, err)
	}
	return rec, nil
}

// Put stores rec in the bucket of its platform.
func (s *Store) Put(rec *Record) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rec.Platform))
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Name), rec.Marshal())
	})
	if err != nil {
		return fmt.Errorf("failed to store record of %s: %w", rec.Name, err)
	}
	return nil
}

// Delete removes the record of a recipe so the next run rebuilds it.
func (s *Store) Delete(platform, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(platform))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}
