package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/0xacademy/academy/ports"
)

var stateBucket = []byte("state")

// BoltTokenCache persists the session token in a BBolt database file
type BoltTokenCache struct {
	db *bbolt.DB
}

// NewBoltTokenCache returns a token cache backed by the given BBolt database
func NewBoltTokenCache(db *bbolt.DB) *BoltTokenCache {
	return &BoltTokenCache{db: db}
}

// OpenBoltTokenCache opens (creating if needed) the database at path
func OpenBoltTokenCache(path string, options *bbolt.Options) (*BoltTokenCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewBoltTokenCache(db), nil
}

// Close closes the underlying BBolt database.
func (c *BoltTokenCache) Close() error {
	return c.db.Close()
}

func (c *BoltTokenCache) Load(ctx context.Context) (string, error) {
	var raw []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(stateBucket)
		if b == nil {
			return ports.ErrNotFound
		}
		v := b.Get([]byte(AuthKey))
		if v == nil {
			return ports.ErrNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return "", err
	}
	return decodeAuthState(raw)
}

func (c *BoltTokenCache) Save(ctx context.Context, token string) error {
	raw, err := encodeAuthState(token)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(AuthKey), raw)
	})
}

func (c *BoltTokenCache) Clear(ctx context.Context) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(stateBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(AuthKey))
	})
}
