package library

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Bucket holds the entries in a BoltStore.
var Bucket = []byte("batches")

// BoltStore is a Provider backed by a BoltDB file.  Entries are
// stored as JSON under their names.
type BoltStore struct {
	Logger *zap.Logger

	filename string
	db       *bolt.DB
}

func NewBoltStore(filename string) *BoltStore {
	return &BoltStore{
		Logger:   zap.NewNop(),
		filename: filename,
	}
}

// Open opens (or creates) the file and makes sure the bucket exists.
func (s *BoltStore) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		return err
	}); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *BoltStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// Put writes the entry.
func (s *BoltStore) Put(ctx context.Context, name string, e *Entry) error {
	s.Logger.Debug("put", zap.String("name", name))

	js, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Put([]byte(name), js)
	})
}

func (s *BoltStore) FindEntry(ctx context.Context, name string) (*Entry, error) {
	s.Logger.Debug("find", zap.String("name", name))

	var e *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(Bucket).Get([]byte(name))
		if bs == nil {
			return NotFound
		}
		e = &Entry{}
		return json.Unmarshal(bs, e)
	})
	if err != nil {
		return nil, err
	}
	if e.Name == "" {
		e.Name = name
	}
	return e, nil
}

// Delete removes the entry.  Deleting a missing entry isn't an
// error.
func (s *BoltStore) Delete(ctx context.Context, name string) error {
	s.Logger.Debug("delete", zap.String("name", name))

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Delete([]byte(name))
	})
}

// List returns the names of the entries in key order.
func (s *BoltStore) List(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(Bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
