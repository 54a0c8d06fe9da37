// Package api provides the HTTP REST API over the loaded activity log.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/api/health"
	"github.com/good-yellow-bee/syncstat/internal/api/middleware"
	"github.com/good-yellow-bee/syncstat/internal/batch"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address            string
	RateLimitPerSecond float64 // per client IP; 0 disables limiting
	RateLimitBurst     int
	MaxWhereLength     int // max length of the where expression
	Verbose            bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 20
	}
	if c.MaxWhereLength == 0 {
		c.MaxWhereLength = 1000
	}
}

// Store provides the current dataset snapshot.
type Store interface {
	Current() (*batch.Dataset, error)
	Ready() bool
	LastError() error
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	store         Store
	server        *http.Server
	healthHandler *health.Handler
	limiter       *middleware.RateLimiter
}

// New creates a new API server.
func New(cfg *Config, store Store) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("dataset store is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		store:         store,
		healthHandler: health.NewHandler(),
		limiter:       middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	}
	s.healthHandler.RegisterChecker(health.NewDatasetChecker(store))

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go s.limiter.CleanupLoop(ctx, 5*time.Minute)

	go func() {
		log.Printf("http api listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down http api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("http api: %w", err)
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
