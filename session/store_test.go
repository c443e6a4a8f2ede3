package session

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/adapters/tokenizer"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/ports"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestRestoreWithoutToken(t *testing.T) {
	s := New(store.NewMemoryTokenCache(), nil)
	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, core.SessionAnonymous, s.Snapshot().State)
	assert.True(t, isClosed(s.Ready()))
	assert.False(t, s.IsAuthenticated())
}

func TestRestoreWithTokenWaitsForRevalidation(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryTokenCache()
	require.NoError(t, cache.Save(ctx, "tok_old"))

	s := New(cache, nil)
	require.NoError(t, s.Restore(ctx))

	snap := s.Snapshot()
	assert.Equal(t, core.SessionRestoring, snap.State)
	assert.Equal(t, "tok_old", snap.Token)
	assert.False(t, snap.IsAuthenticated())
	assert.False(t, isClosed(s.Ready()))

	s.SetUser(&core.User{ID: "u1"})
	assert.True(t, s.IsAuthenticated())
	assert.True(t, isClosed(s.Ready()))
}

func TestEstablishPersistsToken(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryTokenCache()
	s := New(cache, nil)
	require.NoError(t, s.Restore(ctx))

	s.Establish(ctx, "tok_1", &core.User{ID: "u1"})

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok_1", s.Token())
	assert.Equal(t, "u1", s.User().ID)

	saved, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok_1", saved)
}

func TestClearRemovesPersistedToken(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryTokenCache()
	s := New(cache, nil)
	s.Establish(ctx, "tok_1", &core.User{ID: "u1"})

	s.Clear(ctx)

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSetUserWithoutTokenIsIgnored(t *testing.T) {
	s := New(store.NewMemoryTokenCache(), nil)
	require.NoError(t, s.Restore(context.Background()))

	s.SetUser(&core.User{ID: "u1"})

	assert.Nil(t, s.User())
	assert.Equal(t, core.SessionAnonymous, s.Snapshot().State)
}

func TestExpireClearsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryTokenCache(), nil)
	s.Establish(ctx, "tok_1", &core.User{ID: "u1"})

	var cleared atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Expire(ctx, "tok_1") {
				cleared.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), cleared.Load())
	assert.False(t, s.IsAuthenticated())
}

func TestExpireIgnoresStaleToken(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryTokenCache(), nil)
	s.Establish(ctx, "tok_2", &core.User{ID: "u1"})

	assert.False(t, s.Expire(ctx, "tok_1"))
	assert.False(t, s.Expire(ctx, ""))
	assert.True(t, s.IsAuthenticated())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryTokenCache(), nil)

	var states []core.SessionState
	cancel := s.Subscribe(func(snap Snapshot) {
		states = append(states, snap.State)
	})

	require.NoError(t, s.Restore(ctx))
	s.Establish(ctx, "tok_1", &core.User{ID: "u1"})
	cancel()
	s.Clear(ctx)

	assert.Equal(t, []core.SessionState{core.SessionAnonymous, core.SessionAuthenticated}, states)
}

func TestExpiresAt(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryTokenCache(), nil)

	_, ok := s.ExpiresAt()
	assert.False(t, ok)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := tokenizer.NewJWTTokenizer(key).Issue(ports.SessionClaims{
		ID:        "s1",
		UserID:    "u1",
		Address:   "0xabc",
		IssuedAt:  time.Now(),
		ExpiresAt: exp,
	})
	require.NoError(t, err)

	s.Establish(ctx, token, &core.User{ID: "u1"})
	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}
