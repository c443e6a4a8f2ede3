// Package config reads the client and dev-server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Token cache backends
const (
	CacheBolt   = "bbolt"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime settings of the academy client
type Config struct {
	// Backend
	APIURL      string        `env:"ACADEMY_API_URL" envDefault:"http://localhost:9000"`
	HTTPTimeout time.Duration `env:"ACADEMY_HTTP_TIMEOUT" envDefault:"30s"`

	// Wallet
	PrivateKey string `env:"ACADEMY_PRIVATE_KEY"`
	RPCURL     string `env:"ACADEMY_RPC_URL"`
	ChainID    int64  `env:"ACADEMY_CHAIN_ID" envDefault:"1"`

	// SIWE domain and URI; derived from the API URL when empty
	Domain string `env:"ACADEMY_DOMAIN"`
	URI    string `env:"ACADEMY_URI"`

	// Token persistence
	TokenCache string `env:"ACADEMY_TOKEN_CACHE" envDefault:"bbolt"`
	StatePath  string `env:"ACADEMY_STATE_PATH"`
	RedisURL   string `env:"REDIS_URL"`

	LogLevel slog.Level `env:"ACADEMY_LOG_LEVEL" envDefault:"info"`

	// Dev server
	DevAddr string `env:"ACADEMY_DEV_ADDR" envDefault:":9000"`
}

// Load parses the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.complete(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) complete() error {
	api, err := url.Parse(c.APIURL)
	if err != nil || api.Host == "" {
		return fmt.Errorf("%w: ACADEMY_API_URL %q is not an absolute URL", ErrInvalidConfig, c.APIURL)
	}
	if c.Domain == "" {
		c.Domain = api.Host
	}
	if c.URI == "" {
		c.URI = api.Scheme + "://" + api.Host
	}

	switch c.TokenCache {
	case CacheBolt:
		if c.StatePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("%w: ACADEMY_STATE_PATH is unset and no home directory: %v", ErrInvalidConfig, err)
			}
			c.StatePath = filepath.Join(home, ".academy", "state.db")
		}
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis token cache", ErrInvalidConfig)
		}
	case CacheMemory:
	default:
		return fmt.Errorf("%w: unknown ACADEMY_TOKEN_CACHE %q", ErrInvalidConfig, c.TokenCache)
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("%w: ACADEMY_CHAIN_ID must be positive", ErrInvalidConfig)
	}
	return nil
}

// HasWallet reports whether a signing key is configured
func (c *Config) HasWallet() bool {
	return c.PrivateKey != ""
}

// NewLogger builds the text logger used by the CLI
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}
