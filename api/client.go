// Package api is the typed gateway to the 0xAcademy REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/session"
)

// Notice texts emitted by the gateway
const (
	NoticeSessionExpired = "Session expired. Please sign in again."
	NoticeGenericError   = "Something went wrong. Please try again."
)

const HeaderRequestID = "X-Request-ID"

type quietKey struct{}

// Quiet marks ctx so failures of calls made with it raise no notices.
// Session expiry on 401 is still handled.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

func isQuiet(ctx context.Context) bool {
	v, _ := ctx.Value(quietKey{}).(bool)
	return v
}

type anonymousKey struct{}

// anonymous marks ctx so the request carries no bearer token. A 401 on such a
// request says nothing about the session and leaves it alone.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Error(string)   {}

// Client talks to the backend on behalf of the session
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	notifier   ports.Notifier
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithNotifier(n ports.Notifier) Option {
	return func(cl *Client) { cl.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a gateway for baseURL reading the bearer token from sess
func NewClient(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		session:    sess,
		notifier:   nopNotifier{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// Session returns the store the client reads its token from
func (c *Client) Session() *session.Store {
	return c.session
}

// Do sends one JSON request and decodes a 2xx body into out (when non-nil)
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	var token string
	if c.session != nil && !isAnonymous(ctx) {
		token = c.session.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With("method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		if !isQuiet(ctx) && ctx.Err() == nil {
			c.notifier.Error(NoticeGenericError)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readError(resp)
		log.Debug("request rejected", "status", apiErr.Status, "error", apiErr.Detail())
		c.handleError(ctx, token, apiErr)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleError(ctx context.Context, token string, apiErr *Error) {
	if apiErr.Status == http.StatusUnauthorized {
		// Only the call that actually expires the session announces it
		if token != "" && c.session != nil && c.session.Expire(ctx, token) {
			c.logger.Info("session expired")
			c.notifier.Error(NoticeSessionExpired)
		}
		return
	}
	if isQuiet(ctx) {
		return
	}
	if msg := apiErr.Message; msg != "" {
		c.notifier.Error(msg)
		return
	}
	c.notifier.Error(NoticeGenericError)
}

func readError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	apiErr.Code = body.Error
	apiErr.Message = body.Message
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// segment escapes a caller-supplied id for use as one path segment
func segment(id string) string {
	return url.PathEscape(id)
}
