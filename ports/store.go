package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a key holds no value
var ErrNotFound = errors.New("not found")

// TokenCache persists the session token across process restarts
type TokenCache interface {
	// Load returns the persisted token or ErrNotFound
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// NonceStore issues single-use nonces keyed by wallet address
type NonceStore interface {
	Put(ctx context.Context, nonce, address string, ttl time.Duration) error
	// Consume returns the address bound to nonce and deletes it; a second call returns ErrNotFound
	Consume(ctx context.Context, nonce string) (string, error)
}
