// Package api implements the leaderboard service: anonymous identities,
// append-only score submissions, top-N snapshots and a live WebSocket feed.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/space-runner/internal/remote"
)

// DefaultCORSOrigins allows local web front-ends.
var DefaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
type RouterConfig struct {
	// Entries stores submitted scores (required)
	Entries EntryStore

	// Identities stores anonymous identities (required)
	Identities IdentityStore

	// Hub serves the live feed. If nil, the feed route is not mounted and
	// submissions notify nobody.
	Hub *Hub

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	// If both are nil, DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides DefaultCORSOrigins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware.
	DisableLogging bool

	// Now overrides the clock used for snapshots and missing timestamps.
	Now func() time.Time
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It starts no goroutines, so it is safe to wrap in httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = DefaultCORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health and metrics stay reachable for probes regardless of rate limits.
	h := newHandlers(cfg)
	r.Get(remote.PathHealth, h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		rateLimiter := cfg.RateLimiter
		if rateLimiter == nil {
			rateLimitCfg := DefaultRateLimitConfig
			if cfg.RateLimitConfig != nil {
				rateLimitCfg = *cfg.RateLimitConfig
			}
			rateLimiter = NewIPRateLimiter(rateLimitCfg)
		}
		r.Use(rateLimiter.Middleware)

		r.Post(remote.PathAuth, h.handleAuth)
		r.Get(remote.PathLeaderboard, h.handleTop)
		r.With(requireIdentity(cfg.Identities)).Post(remote.PathLeaderboard, h.handleSubmit)

		if cfg.Hub != nil {
			r.Get(remote.PathLeaderboardWS, cfg.Hub.HandleWebSocket)
		}
	})

	return r
}

func newHandlers(cfg RouterConfig) *routerHandlers {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &routerHandlers{
		entries:    cfg.Entries,
		identities: cfg.Identities,
		hub:        cfg.Hub,
		now:        now,
	}
}
