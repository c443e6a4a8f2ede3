// Package http is an in-process stand-in for the 0xAcademy REST backend.
// It implements the routes the client consumes and keeps its data in memory.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/ports"
)

// Config tunes the dev backend
type Config struct {
	// Domain, when set, must match the domain of every SIWE message
	Domain string
	// PublicURL is the base of issued upload URLs; derived from the request when empty
	PublicURL     string
	NonceTTL      time.Duration
	SessionTTL    time.Duration
	MaxUploadSize int64
	RateLimit     RateLimitConfig
}

// DefaultConfig returns the settings used by `academy dev-server`
func DefaultConfig() Config {
	return Config{
		NonceTTL:      5 * time.Minute,
		SessionTTL:    24 * time.Hour,
		MaxUploadSize: core.MaxVideoSize,
		RateLimit:     DefaultRateLimitConfig(),
	}
}

// Deps are the adapters the dev backend runs on
type Deps struct {
	Nonces    ports.NonceStore
	Tokenizer ports.Tokenizer
	Events    ports.EventPublisher
	Prober    ports.DurationProber
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// Server wires handlers, middleware and state together
type Server struct {
	engine  *gin.Engine
	catalog *Catalog
	limiter *RateLimiter
}

type nopPublisher struct{}

func (nopPublisher) PublishLogin(context.Context, string, string) error        { return nil }
func (nopPublisher) PublishLogout(context.Context, string, string) error       { return nil }
func (nopPublisher) PublishVideoUploaded(context.Context, string, int64) error { return nil }

// NewServer sets up the Gin router
func NewServer(cfg Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devserver")
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	metrics := NewMetrics(registry)
	sessions := NewSessions()
	catalog := NewCatalog()
	limiter := NewRateLimiter(cfg.RateLimit, metrics)

	authHandlers := &AuthHandlers{
		nonces:     deps.Nonces,
		tokenizer:  deps.Tokenizer,
		events:     deps.Events,
		sessions:   sessions,
		catalog:    catalog,
		metrics:    metrics,
		logger:     logger,
		domain:     cfg.Domain,
		nonceTTL:   cfg.NonceTTL,
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
	}
	courseHandlers := &CourseHandlers{catalog: catalog}
	userHandlers := &UserHandlers{catalog: catalog}
	videoHandlers := &VideoHandlers{
		catalog:   catalog,
		events:    deps.Events,
		prober:    deps.Prober,
		metrics:   metrics,
		logger:    logger,
		publicURL: cfg.PublicURL,
		maxSize:   cfg.MaxUploadSize,
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), metrics.Middleware())

	requireAuth := AuthMiddleware(deps.Tokenizer, sessions)
	optionalAuth := OptionalAuthMiddleware(deps.Tokenizer, sessions)

	router.GET("/metrics", gin.WrapH(Handler(registry)))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/nonce", limiter.Middleware(), authHandlers.Nonce)
		auth.POST("/verify", authHandlers.Verify)
		auth.GET("/me", requireAuth, authHandlers.Me)
		auth.POST("/logout", requireAuth, authHandlers.Logout)
	}

	courses := router.Group("/courses")
	{
		courses.GET("", courseHandlers.List)
		courses.GET("/enrolled", requireAuth, courseHandlers.Enrolled)
		courses.GET("/:id", optionalAuth, courseHandlers.Get)
		courses.POST("", requireAuth, courseHandlers.Create)
		courses.PATCH("/:id", requireAuth, courseHandlers.Update)
		courses.DELETE("/:id", requireAuth, courseHandlers.Delete)
		courses.POST("/:id/publish", requireAuth, courseHandlers.Publish)
		courses.POST("/:id/enroll", requireAuth, courseHandlers.Enroll)
		courses.GET("/:id/lessons", optionalAuth, courseHandlers.Lessons)
		courses.POST("/:id/lessons", requireAuth, courseHandlers.CreateLesson)
		courses.PATCH("/:id/lessons/:lessonId", requireAuth, courseHandlers.UpdateLesson)
		courses.DELETE("/:id/lessons/:lessonId", requireAuth, courseHandlers.DeleteLesson)
	}

	user := router.Group("/user")
	{
		user.GET("/profile", requireAuth, userHandlers.Profile)
		user.PATCH("/profile", requireAuth, userHandlers.UpdateProfile)
		user.GET("/teaching", requireAuth, userHandlers.Teaching)
		user.GET("/progress", requireAuth, userHandlers.Progress)
		user.POST("/progress/lesson/:lessonId", requireAuth, userHandlers.MarkLesson)
		user.GET("/certificates", requireAuth, userHandlers.Certificates)
		user.POST("/become-instructor", requireAuth, userHandlers.BecomeInstructor)
		user.GET("/:address", userHandlers.Public)
	}

	videos := router.Group("/videos")
	{
		videos.POST("/upload-url", requireAuth, videoHandlers.UploadURL)
		videos.GET("/:id", requireAuth, videoHandlers.Get)
		videos.DELETE("/:id", requireAuth, videoHandlers.Delete)
	}

	// One-time destinations handed out by /videos/upload-url
	router.POST("/uploads/:videoId", videoHandlers.Receive)

	return &Server{engine: router, catalog: catalog, limiter: limiter}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Catalog exposes the in-memory data set for seeding and inspection
func (s *Server) Catalog() *Catalog { return s.catalog }

// Close stops background work
func (s *Server) Close() {
	s.limiter.Stop()
}
