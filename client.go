// Package academy wires the 0xAcademy session, API gateway, wallet and
// coordinators together from configuration.
package academy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"go.etcd.io/bbolt"

	"github.com/0xacademy/academy/adapters/notify"
	"github.com/0xacademy/academy/adapters/probe"
	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/adapters/wallet"
	"github.com/0xacademy/academy/api"
	"github.com/0xacademy/academy/internal/config"
	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/service"
	"github.com/0xacademy/academy/session"
)

const redisNamespace = "academy"

// Client is the assembled client toolkit
type Client struct {
	cfg      *config.Config
	session  *session.Store
	api      *api.Client
	auth     *service.Authenticator
	wallet   *wallet.KeyWallet
	notifier ports.Notifier
	logger   *slog.Logger
	http     *http.Client

	started atomic.Bool
	closers []func() error
}

type options struct {
	notifier   ports.Notifier
	logger     *slog.Logger
	tokenCache ports.TokenCache
	httpClient *http.Client
}

// Option customises New
type Option func(*options)

// WithNotifier replaces the console notifier
func WithNotifier(n ports.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithLogger sets the structured logger shared by every component
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTokenCache overrides the cache selected by ACADEMY_TOKEN_CACHE
func WithTokenCache(c ports.TokenCache) Option {
	return func(o *options) { o.tokenCache = c }
}

// WithHTTPClient replaces the HTTP client used for the backend and the video host
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New builds a client from cfg. Call Start before using the session.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.notifier == nil {
		o.notifier = notify.NewConsole(os.Stderr, o.logger)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	c := &Client{
		cfg:      cfg,
		notifier: o.notifier,
		logger:   o.logger,
		http:     o.httpClient,
	}

	cache := o.tokenCache
	if cache == nil {
		var err error
		if cache, err = c.openTokenCache(); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.session = session.New(cache, o.logger)
	c.api = api.NewClient(cfg.APIURL, c.session,
		api.WithHTTPClient(o.httpClient),
		api.WithNotifier(o.notifier),
		api.WithLogger(o.logger),
	)

	// Keep the interface nil when there is no key so the Authenticator sees no wallet
	var w ports.Wallet
	if cfg.HasWallet() {
		kw, err := c.openWallet(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.wallet = kw
		w = kw
	}

	c.auth = service.NewAuthenticator(c.api, w, c.session, o.notifier, service.AuthConfig{
		Domain: cfg.Domain,
		URI:    cfg.URI,
	}, o.logger)

	return c, nil
}

func (c *Client) openTokenCache() (ports.TokenCache, error) {
	switch c.cfg.TokenCache {
	case config.CacheBolt:
		cache, err := store.OpenBoltTokenCache(c.cfg.StatePath, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("open token cache: %w", err)
		}
		c.closers = append(c.closers, cache.Close)
		return cache, nil
	case config.CacheRedis:
		redisOpts, err := redis.ParseURL(c.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		c.closers = append(c.closers, client.Close)
		return store.NewRedisTokenCache(client, redisNamespace), nil
	default:
		return store.NewMemoryTokenCache(), nil
	}
}

func (c *Client) openWallet(ctx context.Context) (*wallet.KeyWallet, error) {
	walletOpts := []wallet.Option{wallet.WithChainID(c.cfg.ChainID)}
	if c.cfg.RPCURL != "" {
		ec, err := ethclient.DialContext(ctx, c.cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		c.closers = append(c.closers, func() error { ec.Close(); return nil })
		walletOpts = append(walletOpts, wallet.WithEthClient(ec))
	}

	kw, err := wallet.NewKeyWallet(c.cfg.PrivateKey, walletOpts...)
	if err != nil {
		return nil, err
	}
	return kw, nil
}

// Start restores the persisted token and revalidates it with the backend.
// It reports whether the session ends up authenticated.
func (c *Client) Start(ctx context.Context) (bool, error) {
	if err := c.session.Restore(ctx); err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	c.started.Store(true)
	return c.auth.Revalidate(ctx), nil
}

// Login signs in with the configured key
func (c *Client) Login(ctx context.Context) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	if c.wallet == nil {
		return false, ErrNoWallet
	}
	return c.auth.Login(ctx), nil
}

// Logout ends the session locally and on the backend
func (c *Client) Logout(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	c.auth.Logout(ctx)
	return nil
}

func (c *Client) ready() error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	return nil
}

// NewUploader returns an upload coordinator bound to a course (and optionally a lesson).
// Selected files are probed for their duration.
func (c *Client) NewUploader(courseID, lessonID string, opts ...service.UploadOption) *service.Uploader {
	base := []service.UploadOption{
		service.WithProber(probe.NewMP4Prober()),
		// The transfer carries its own deadline; the API client timeout would cut it short
		service.WithHTTPClient(&http.Client{Transport: c.http.Transport}),
		service.WithUploadLogger(c.logger),
	}
	return service.NewUploader(c.api, c.notifier, courseID, lessonID, append(base, opts...)...)
}

// API returns the gateway client
func (c *Client) API() *api.Client { return c.api }

// Session returns the shared session store
func (c *Client) Session() *session.Store { return c.session }

// Wallet returns the key wallet, nil when none is configured
func (c *Client) Wallet() *wallet.KeyWallet { return c.wallet }

// Config returns the configuration the client was built from
func (c *Client) Config() *config.Config { return c.cfg }

// Close releases the token cache and RPC connections
func (c *Client) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
