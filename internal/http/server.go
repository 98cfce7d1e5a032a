// Package http serves the ops listener: liveness, readiness and Prometheus metrics.
// Credential operations are not exposed over HTTP.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credstore/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// KeyStatus reports whether every configured encryption key has been verified.
type KeyStatus interface {
	Verified() bool
}

// Options configures the ops listener.
type Options struct {
	Host             string
	Port             int
	CORSEnabled      bool
	CORSAllowOrigins string
	MetricsNamespace string
}

// Server is the ops HTTP listener.
type Server struct {
	db              *sql.DB
	keys            KeyStatus
	metricsProvider *metrics.Provider
	logger          *slog.Logger
	router          *gin.Engine
	server          *http.Server
}

// NewServer creates the ops listener. A nil metricsProvider disables /metrics and
// request metrics.
func NewServer(
	db *sql.DB,
	keys KeyStatus,
	metricsProvider *metrics.Provider,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		db:              db,
		keys:            keys,
		metricsProvider: metricsProvider,
		logger:          logger,
	}
	s.router = s.setupRouter(opts)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	// Recovery runs inside the logger so recovered panics are logged as 500s.
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(gin.Recovery())

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.metricsProvider.MeterProvider(), opts.MetricsNamespace))
		router.GET("/metrics", gin.WrapH(s.metricsProvider.Handler()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	return router
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting ops server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start ops server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down ops server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler requires a reachable database and verified keys.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok", "encryption_keys": "ok"}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	if s.keys == nil || !s.keys.Verified() {
		components["encryption_keys"] = "unverified"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
