package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/0xacademy/academy/api"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/session"
	"github.com/0xacademy/academy/siwe"
)

// Statement is the human-readable line of every sign-in message
const Statement = "Sign in to 0xAcademy"

// Notice texts emitted by the Authenticator
const (
	NoticeLoginSuccess   = "Successfully signed in"
	NoticeLoginCancelled = "Login cancelled"
	NoticeLoginFailed    = "Login failed. Please try again."
	NoticeLogoutSuccess  = "Successfully signed out"
)

// AuthAPI is the part of the backend the Authenticator talks to
type AuthAPI interface {
	Nonce(ctx context.Context, address string) (string, error)
	Verify(ctx context.Context, message, signature string) (*api.VerifyResponse, error)
	Me(ctx context.Context) (*core.User, error)
	Logout(ctx context.Context) error
}

// AuthConfig identifies the relying party in the SIWE message
type AuthConfig struct {
	Domain string
	URI    string
}

// Authenticator drives the SIWE handshake and owns login/logout writes to the session
type Authenticator struct {
	api      AuthAPI
	wallet   ports.Wallet
	session  *session.Store
	notifier ports.Notifier
	logger   *slog.Logger
	config   AuthConfig
	now      func() time.Time

	mu       sync.Mutex
	pending  bool
	awaiting bool
}

// NewAuthenticator creates a new authentication coordinator
func NewAuthenticator(
	authAPI AuthAPI,
	wallet ports.Wallet,
	sess *session.Store,
	notifier ports.Notifier,
	config AuthConfig,
	logger *slog.Logger,
) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		api:      authAPI,
		wallet:   wallet,
		session:  sess,
		notifier: notifier,
		logger:   logger.With("component", "auth"),
		config:   config,
		now:      time.Now,
	}
}

// Pending reports whether a login attempt is outstanding
func (a *Authenticator) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Login runs one sign-in attempt and reports whether the session is now authenticated.
// Without a connected account it requests a connection and returns false; the attempt
// resumes from WalletConnected. Calling Login again while the connection is still
// outstanding asks the wallet once more, so a dismissed prompt never blocks later logins.
func (a *Authenticator) Login(ctx context.Context) bool {
	a.mu.Lock()
	if a.pending && !a.awaiting {
		a.mu.Unlock()
		a.logger.Debug("login ignored", "error", core.ErrLoginPending)
		return false
	}
	retry := a.pending
	a.pending = true
	a.mu.Unlock()

	if address, ok := a.wallet.Account(); ok {
		if retry && !a.claimAwaiting() {
			return false
		}
		return a.handshake(ctx, address)
	}

	if retry {
		a.logger.Debug("requesting wallet connection again")
	}
	a.mu.Lock()
	a.awaiting = true
	a.mu.Unlock()

	if err := a.wallet.RequestConnection(ctx); err != nil {
		a.logger.Warn("wallet connection failed", "error", err)
		a.finish()
		a.notifier.Error(NoticeLoginFailed)
		return false
	}

	// Providers that connect synchronously are picked up here
	if address, ok := a.wallet.Account(); ok && a.claimAwaiting() {
		return a.handshake(ctx, address)
	}
	return false
}

// WalletConnected resumes an attempt suspended while waiting for the wallet.
// It is a no-op when no attempt is waiting.
func (a *Authenticator) WalletConnected(ctx context.Context, address common.Address) bool {
	if !a.claimAwaiting() {
		return false
	}
	return a.handshake(ctx, address)
}

func (a *Authenticator) claimAwaiting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.awaiting {
		return false
	}
	a.awaiting = false
	return true
}

func (a *Authenticator) finish() {
	a.mu.Lock()
	a.pending = false
	a.awaiting = false
	a.mu.Unlock()
}

func (a *Authenticator) handshake(ctx context.Context, address common.Address) bool {
	defer a.finish()

	log := a.logger.With("address", address.Hex())

	token, user, err := a.signIn(ctx, address)
	if err != nil {
		if errors.Is(err, ports.ErrSignatureRejected) {
			log.Info("login cancelled by wallet holder")
			a.notifier.Info(NoticeLoginCancelled)
			return false
		}
		log.Warn("login failed", "error", err)
		a.notifier.Error(loginFailure(err))
		return false
	}

	a.session.Establish(ctx, token, user)
	log.Info("logged in", "user_id", user.ID)
	a.notifier.Success(NoticeLoginSuccess)
	return true
}

func (a *Authenticator) signIn(ctx context.Context, address common.Address) (string, *core.User, error) {
	// Coordinator owns its notices
	qctx := api.Quiet(ctx)

	nonce, err := a.api.Nonce(qctx, address.Hex())
	if err != nil {
		return "", nil, fmt.Errorf("get nonce: %w", err)
	}

	chainID, err := a.wallet.ChainID(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("get chain id: %w", err)
	}

	msg := siwe.NewMessage(a.config.Domain, address, Statement, a.config.URI, chainID, nonce, a.now())
	if err := msg.Validate(); err != nil {
		return "", nil, err
	}
	text := msg.String()

	signature, err := a.wallet.SignMessage(ctx, text)
	if err != nil {
		return "", nil, fmt.Errorf("sign message: %w", err)
	}

	resp, err := a.api.Verify(qctx, text, hexutil.Encode(signature))
	if err != nil {
		return "", nil, fmt.Errorf("verify signature: %w", err)
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, errors.New("verify returned no session")
	}

	return resp.Token, resp.User, nil
}

func loginFailure(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return NoticeLoginFailed
}

// Logout tells the backend best-effort, then always clears the local session
func (a *Authenticator) Logout(ctx context.Context) {
	if a.session.Token() != "" {
		if err := a.api.Logout(api.Quiet(ctx)); err != nil {
			a.logger.Warn("backend logout failed", "error", err)
		}
	}

	a.session.Clear(ctx)
	a.logger.Info("logged out")
	a.notifier.Success(NoticeLogoutSuccess)
}

// Revalidate confirms a restored token with the backend. Any failure leaves
// the session anonymous. The session is ready once it returns.
func (a *Authenticator) Revalidate(ctx context.Context) bool {
	snap := a.session.Snapshot()
	if snap.Token == "" {
		a.session.Clear(ctx)
		return false
	}
	if snap.State == core.SessionAuthenticated {
		return true
	}

	user, err := a.api.Me(api.Quiet(ctx))
	if err != nil || user == nil {
		a.logger.Info("restored token rejected", "error", err)
		// No-op when a 401 already expired it or a new login replaced it
		a.session.Expire(ctx, snap.Token)
		return a.session.IsAuthenticated()
	}

	a.session.SetUser(user)
	return true
}
