package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Store hands out per-request sessions and reports database health.
type Store interface {
	Ping(ctx context.Context) error
	OpenSession() storage.ScopedSession
}

// Options tunes the HTTP server.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int // 0 disables rate limiting
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// Server is the JSON API server.
type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store Store, opts Options) *Server {
	router, limiter := NewRouter(store, opts)
	return &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           router,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		limiter: limiter,
	}
}

// NewRouter builds the gin engine with one record handler per kind. The
// returned limiter is nil when rate limiting is disabled; the caller owns it.
func NewRouter(store Store, opts Options) (*gin.Engine, *ratelimit.Limiter) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	r := gin.New()
	if err := r.SetTrustedProxies(security.TrustedProxies); err != nil {
		httpLogger.Warn("Invalid trusted proxies", log.FieldError, err)
	}

	r.Use(
		gin.CustomRecovery(recoveryHandler(httpLogger)),
		trace.NewMiddleware(logger).Handler(),
		security.Headers(security.DefaultHeadersConfig()),
		security.NewDetector(logger).Middleware(),
	)

	var limiter *ratelimit.Limiter
	if opts.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		r.Use(limiter.Middleware())
	}

	health := &healthHandler{store: store}
	r.GET("/ping", health.Ping)
	r.GET("/healthz", health.Live)
	r.GET("/readyz", health.Ready)

	for _, kind := range core.Kinds() {
		h := NewRecordHandler(services.NewRecordService(kind, logger), store)
		g := r.Group("/" + kind.Plural())
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, "Resource not found")
	})

	return r, limiter
}

func recoveryHandler(logger *log.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "Panic recovered",
			"panic", recovered,
			log.FieldPath, c.Request.URL.Path,
			log.FieldErrorType, log.ErrorTypeInternal)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
