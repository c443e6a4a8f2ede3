package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"ACADEMY_STATE_PATH": "/tmp/academy.db"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, int64(1), cfg.ChainID)
	assert.Equal(t, CacheBolt, cfg.TokenCache)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.DevAddr)
	assert.False(t, cfg.HasWallet())
}

func TestDomainDerivedFromAPIURL(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ACADEMY_API_URL":     "https://api.0xacademy.io/v1",
		"ACADEMY_TOKEN_CACHE": CacheMemory,
	})
	require.NoError(t, err)

	assert.Equal(t, "api.0xacademy.io", cfg.Domain)
	assert.Equal(t, "https://api.0xacademy.io", cfg.URI)
}

func TestExplicitValues(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ACADEMY_DOMAIN":       "0xacademy.io",
		"ACADEMY_URI":          "https://0xacademy.io",
		"ACADEMY_CHAIN_ID":     "8453",
		"ACADEMY_LOG_LEVEL":    "debug",
		"ACADEMY_HTTP_TIMEOUT": "5s",
		"ACADEMY_PRIVATE_KEY":  "0xabc",
		"ACADEMY_TOKEN_CACHE":  CacheRedis,
		"REDIS_URL":            "redis://localhost:6379/0",
	})
	require.NoError(t, err)

	assert.Equal(t, "0xacademy.io", cfg.Domain)
	assert.Equal(t, int64(8453), cfg.ChainID)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.HasWallet())
}

func TestStatePathDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".academy", "state.db"), cfg.StatePath)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown cache", map[string]string{"ACADEMY_TOKEN_CACHE": "sqlite"}},
		{"redis without url", map[string]string{"ACADEMY_TOKEN_CACHE": CacheRedis}},
		{"relative api url", map[string]string{"ACADEMY_API_URL": "localhost", "ACADEMY_TOKEN_CACHE": CacheMemory}},
		{"zero chain", map[string]string{"ACADEMY_CHAIN_ID": "0", "ACADEMY_TOKEN_CACHE": CacheMemory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadFrom(map[string]string{"ACADEMY_CHAIN_ID": "abc"})
	assert.Error(t, err)
}
