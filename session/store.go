// Package session holds the client-side authentication state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/0xacademy/academy/adapters/tokenizer"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/ports"
)

// Snapshot is an immutable view of the session
type Snapshot struct {
	State core.SessionState
	Token string
	User  *core.User
}

// IsAuthenticated reports whether the snapshot carries a confirmed session
func (s Snapshot) IsAuthenticated() bool {
	return s.State == core.SessionAuthenticated && s.Token != ""
}

// Store is the single owner of {user, token, authenticated}.
// Only the token is persisted through the TokenCache.
type Store struct {
	cache  ports.TokenCache
	logger *slog.Logger

	mu    sync.RWMutex
	state core.SessionState
	token string
	user  *core.User

	ready     chan struct{}
	readyOnce sync.Once

	subsMu sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New creates a store in the restoring state; call Restore before use
func New(cache ports.TokenCache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cache:  cache,
		logger: logger.With("component", "session"),
		state:  core.SessionRestoring,
		ready:  make(chan struct{}),
		subs:   make(map[int]func(Snapshot)),
	}
}

// Restore loads the persisted token. With a token the store stays in
// restoring until SetUser or Clear; without one it becomes anonymous and ready.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.cache.Load(ctx)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.Warn("failed to load persisted token", "error", err)
	}

	s.mu.Lock()
	if token == "" {
		s.state = core.SessionAnonymous
		s.token = ""
		s.user = nil
	} else {
		s.state = core.SessionRestoring
		s.token = token
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if snap.State == core.SessionAnonymous {
		s.markReady()
	}
	s.publish(snap)

	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return nil
}

// Establish records a freshly issued token together with its user
func (s *Store) Establish(ctx context.Context, token string, user *core.User) {
	s.mu.Lock()
	s.state = core.SessionAuthenticated
	s.token = token
	s.user = user
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.cache.Save(ctx, token); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
	}

	s.markReady()
	s.publish(snap)
}

// SetUser replaces the profile. When a token is held the session becomes
// authenticated, which completes a restore.
func (s *Store) SetUser(user *core.User) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.user = user
	s.state = core.SessionAuthenticated
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.markReady()
	s.publish(snap)
}

// Clear drops the session and its persisted token
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	snap := s.clearLocked()
	s.mu.Unlock()

	s.finishClear(ctx, snap)
}

// Expire clears the session only if token is still the current one.
// It returns true for the single caller that actually cleared it.
func (s *Store) Expire(ctx context.Context, token string) bool {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	snap := s.clearLocked()
	s.mu.Unlock()

	s.finishClear(ctx, snap)
	return true
}

func (s *Store) clearLocked() Snapshot {
	s.state = core.SessionAnonymous
	s.token = ""
	s.user = nil
	return s.snapshotLocked()
}

func (s *Store) finishClear(ctx context.Context, snap Snapshot) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted token", "error", err)
	}
	s.markReady()
	s.publish(snap)
}

// Snapshot returns the current session view
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Token: s.token, User: s.user}
}

// Token returns the bearer token, empty when none is held
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Ready is closed once the session leaves the restoring state
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// ExpiresAt reads the exp claim of the held token without verifying it
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return tokenizer.ExpiresAt(token)
}

// Subscribe registers fn for every change and returns its cancel func.
// Callbacks run outside the store lock on the writer's goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) publish(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
