package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/space-runner/internal/remote"
)

// Store is everything the service persists.
type Store interface {
	EntryStore
	IdentityStore
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	RateLimitConfig *RateLimitConfig
	DisableLogging  bool
	Logger          *log.Logger
}

// Server is the leaderboard HTTP service with its live feed.
type Server struct {
	addr        string
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter
	logger      *log.Logger
}

// NewServer wires the router, hub and rate limiter. Background workers do
// not start until Run or Start is called.
func NewServer(store Store, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rlCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rlCfg = *cfg.RateLimitConfig
	}
	origins := cfg.CORSOrigins
	if origins == nil {
		origins = DefaultCORSOrigins
	}

	s := &Server{
		addr:        cfg.Addr,
		rateLimiter: NewIPRateLimiter(rlCfg),
		logger:      logger,
	}

	// The hub and the GET handler build snapshots the same way.
	snap := newHandlers(RouterConfig{Entries: store})
	s.hub = NewHub(snap.snapshot, origins, logger)

	s.router = NewRouter(RouterConfig{
		Entries:        store,
		Identities:     store,
		Hub:            s.hub,
		RateLimiter:    s.rateLimiter,
		CORSOrigins:    origins,
		DisableLogging: cfg.DisableLogging,
	})
	return s
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the live feed hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start launches the background workers (feed hub, limiter cleanup) without
// listening. Use it with Router in tests.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.rateLimiter.Run(ctx)
}

// Run starts the workers and serves HTTP until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("leaderboard service listening", "addr", s.addr,
			"feed", remote.PathLeaderboardWS, "metrics", "/metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down leaderboard service")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown failed: %w", err)
	}
	return nil
}
