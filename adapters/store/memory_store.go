package store

import (
	"context"
	"sync"
	"time"

	"github.com/0xacademy/academy/ports"
)

// MemoryTokenCache keeps the session token for the lifetime of the process
type MemoryTokenCache struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenCache creates an empty in-memory token cache
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

// Load returns the cached token
func (c *MemoryTokenCache) Load(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return "", ports.ErrNotFound
	}
	return c.token, nil
}

// Save replaces the cached token
func (c *MemoryTokenCache) Save(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	return nil
}

// Clear drops the cached token
func (c *MemoryTokenCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	return nil
}

type nonceEntry struct {
	address   string
	expiresAt time.Time
}

// MemoryNonceStore is an in-memory implementation of ports.NonceStore
type MemoryNonceStore struct {
	nonces map[string]nonceEntry
	mu     sync.Mutex
}

// NewMemoryNonceStore creates a new in-memory nonce store
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		nonces: make(map[string]nonceEntry),
	}
}

// Put binds a nonce to an address until ttl elapses
func (s *MemoryNonceStore) Put(ctx context.Context, nonce, address string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	s.nonces[nonce] = nonceEntry{address: address, expiresAt: expiresAt}

	// Start a cleanup goroutine
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the entry hasn't been replaced
		if e, exists := s.nonces[nonce]; exists && !e.expiresAt.After(expiresAt) {
			delete(s.nonces, nonce)
		}
	}()

	return nil
}

// Consume returns the bound address and removes the nonce
func (s *MemoryNonceStore) Consume(ctx context.Context, nonce string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.nonces[nonce]
	if !exists {
		return "", ports.ErrNotFound
	}
	delete(s.nonces, nonce)

	if time.Now().After(e.expiresAt) {
		return "", ports.ErrNotFound
	}
	return e.address, nil
}
