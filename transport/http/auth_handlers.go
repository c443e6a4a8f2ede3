package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0xacademy/academy/ports"
	"github.com/0xacademy/academy/siwe"
)

// AuthHandlers contains HTTP handlers for the SIWE auth endpoints
type AuthHandlers struct {
	nonces    ports.NonceStore
	tokenizer ports.Tokenizer
	events    ports.EventPublisher
	sessions  *Sessions
	catalog   *Catalog
	metrics   *Metrics
	logger    *slog.Logger

	domain     string
	nonceTTL   time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// Nonce handles the nonce request
func (h *AuthHandlers) Nonce(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Address is required")
		return
	}
	if !common.IsHexAddress(req.Address) {
		abort(c, http.StatusBadRequest, "Invalid Ethereum address")
		return
	}

	// Random nonce
	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		fail(c, err)
		return
	}
	nonce := hex.EncodeToString(nonceBytes)

	address := common.HexToAddress(req.Address).Hex()
	if err := h.nonces.Put(c.Request.Context(), nonce, address, h.nonceTTL); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Verify handles the signed SIWE message and issues a session token
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Message and signature are required")
		return
	}

	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		abort(c, http.StatusBadRequest, "Invalid signature format")
		return
	}

	msg, err := siwe.Verify(req.Message, signature, h.now())
	if err != nil {
		switch {
		case errors.Is(err, siwe.ErrMalformed):
			abort(c, http.StatusBadRequest, "Invalid SIWE message")
		case errors.Is(err, siwe.ErrExpired), errors.Is(err, siwe.ErrNotYet):
			abort(c, http.StatusUnauthorized, "SIWE message is not valid at this time")
		default:
			abort(c, http.StatusUnauthorized, "Invalid signature")
		}
		return
	}
	if h.domain != "" && msg.Domain != h.domain {
		abort(c, http.StatusUnauthorized, "Invalid domain")
		return
	}

	// Single use: a replayed message finds no nonce
	bound, err := h.nonces.Consume(c.Request.Context(), msg.Nonce)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			abort(c, http.StatusUnauthorized, "Invalid or expired nonce")
			return
		}
		fail(c, err)
		return
	}
	if !strings.EqualFold(bound, msg.Address.Hex()) {
		abort(c, http.StatusUnauthorized, "Invalid or expired nonce")
		return
	}

	user := h.catalog.UserByAddress(msg.Address.Hex())

	now := h.now()
	sessionID := uuid.NewString()
	token, err := h.tokenizer.Issue(ports.SessionClaims{
		ID:        sessionID,
		UserID:    user.ID,
		Address:   user.WalletAddress,
		IssuedAt:  now,
		ExpiresAt: now.Add(h.sessionTTL),
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.sessions.Add(sessionID, user.ID)

	if err := h.events.PublishLogin(c.Request.Context(), user.WalletAddress, sessionID); err != nil {
		h.logger.Warn("failed to publish login event", "error", err)
	}
	h.metrics.RecordLogin()

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	user, err := h.catalog.User(userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout revokes the session behind the bearer token
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString(ctxSessionID)
	h.sessions.Revoke(sessionID)

	if err := h.events.PublishLogout(c.Request.Context(), c.GetString(ctxAddress), sessionID); err != nil {
		h.logger.Warn("failed to publish logout event", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
