package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0xacademy/academy/ports"
)

const (
	ctxUserID    = "userID"
	ctxSessionID = "sessionID"
	ctxAddress   = "userAddress"
)

// Sessions tracks issued session ids so logout can revoke a token before it expires
type Sessions struct {
	mu     sync.RWMutex
	active map[string]string
}

func NewSessions() *Sessions {
	return &Sessions{active: make(map[string]string)}
}

func (s *Sessions) Add(sessionID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[sessionID] = userID
}

func (s *Sessions) Revoke(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, sessionID)
}

func (s *Sessions) Active(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[sessionID]
	return ok
}

// authenticate resolves the bearer token of c, reporting whether one was present
func authenticate(c *gin.Context, tokenizer ports.Tokenizer, sessions *Sessions) (ports.SessionClaims, bool, error) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ports.SessionClaims{}, false, nil
	}

	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return ports.SessionClaims{}, true, &statusError{status: http.StatusUnauthorized, message: "Invalid authorization header"}
	}

	claims, err := tokenizer.Parse(token)
	if err != nil {
		return ports.SessionClaims{}, true, &statusError{status: http.StatusUnauthorized, message: "Invalid or expired token"}
	}
	if !sessions.Active(claims.ID) {
		return ports.SessionClaims{}, true, &statusError{status: http.StatusUnauthorized, message: "Session has been revoked"}
	}
	return claims, true, nil
}

func setClaims(c *gin.Context, claims ports.SessionClaims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxSessionID, claims.ID)
	c.Set(ctxAddress, claims.Address)
}

// AuthMiddleware rejects requests without a valid, unrevoked bearer token
func AuthMiddleware(tokenizer ports.Tokenizer, sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := authenticate(c, tokenizer, sessions)
		if err != nil {
			fail(c, err)
			return
		}
		if !present {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and
// otherwise lets the request through anonymously
func OptionalAuthMiddleware(tokenizer ports.Tokenizer, sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, present, err := authenticate(c, tokenizer, sessions); present && err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequestID echoes the caller's X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("requestID"),
			"errors", c.Errors.String(),
		)
	}
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
