// Package server assembles the match store, mutation service, hub and HTTP
// router into a runnable scoreline server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Tyrowin/scoreline/internal/match"
	"github.com/Tyrowin/scoreline/internal/metrics"
)

// Server owns every long-lived component of a running instance.
type Server struct {
	cfg       Config
	store     *match.Store
	hub       *Hub
	service   *match.Service
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	limiter   *ipRateLimiter
	origins   originPolicy
	upgrader  websocket.Upgrader
	clock     clockwork.Clock
	handler   http.Handler
	startOnce sync.Once
}

// Option customizes a Server at construction time.
type Option func(*Server)

// WithClock replaces the wall clock used for pings, rate limiting and
// shutdown timers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithStore seeds the server with an existing match store.
func WithStore(store *match.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRegistry registers the server's collectors on reg instead of a
// private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New builds a server from cfg. The hub is not running until Start,
// Handler or ListenAndServe is called.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:   sanitizeConfig(cfg),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = match.NewStore()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	s.metrics = metrics.New(s.registry)
	s.hub = NewHub(s.store, s.metrics, s.clock)
	s.service = match.NewService(s.store, s.hub)
	s.limiter = newIPRateLimiter(s.cfg.RateLimit(), s.clock)
	s.origins = newOriginPolicy(s.cfg.AllowedOrigins)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	s.handler = s.routes()

	return s
}

// Handler returns the HTTP handler serving every route. It starts the hub
// if Start has not run yet.
func (s *Server) Handler() http.Handler {
	s.Start()
	return s.handler
}

// Hub returns the subscriber hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Store returns the match store.
func (s *Server) Store() *match.Store {
	return s.store
}

// Config returns the sanitized configuration in use.
func (s *Server) Config() Config {
	return s.cfg
}

// Start launches the hub loop. Calling it more than once has no effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		go s.hub.Run()
		slog.Info("Hub started and ready to manage WebSocket connections")
	})
}

// ListenAndServe starts the hub and the HTTP server and blocks until ctx
// is cancelled or the listener fails. On cancellation the HTTP server and
// the hub are shut down within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.Start()

	httpServer := CreateServer(s.cfg.Addr(), s.Handler())
	errCh := make(chan error, 1)
	go func() {
		errCh <- StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout); hubErr != nil {
			slog.Warn("Hub shutdown error", "error", hubErr)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	httpErr := ShutdownServer(httpServer, s.cfg.ShutdownTimeout)
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)
	if err := errors.Join(httpErr, hubErr); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
