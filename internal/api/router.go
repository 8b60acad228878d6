// Package api implements the control-plane HTTP/WS surface: the sole
// external collaborator allowed to drive a running match, via
// match.ScheduleExternal, and the read-only snapshot/metrics endpoints an
// operator panel or broadcast overlay polls.
//
// Grounded on the teacher's internal/api package (router.go, server.go,
// ratelimit.go, websocket.go, observability.go) — same chi router, CORS,
// IP rate limiting, and Prometheus instrumentation, restructured around
// per-match routes instead of a single global game engine.
package api

import (
	"net/http"

	"github.com/fight-club/matchsim/internal/match"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// MatchHandle is the subset of *match.Match the control plane depends on.
// Keeping this minimal and interface-typed lets tests substitute a fake
// without spinning up a full running match.
//
// Grounded on the teacher's EngineInterface (internal/api/router.go).
type MatchHandle interface {
	GetSnapshot() *match.MatchSnapshot
	ScheduleExternal(kind match.EventType, payload any, sourceID string) error
	Summarize() match.MatchSummary
}

// Registry resolves a path {id} to a running match. MatchSet is the
// production implementation; tests can substitute their own.
type Registry interface {
	Get(id string) (MatchHandle, bool)
}

// MatchSet is a Registry backed by a plain map, safe for concurrent
// reads. Matches are registered once at startup; this module never runs
// more than a handful of concurrent matches, so a simple map beats
// introducing a dedicated concurrent map type for it.
type MatchSet struct {
	matches map[string]MatchHandle
}

// NewMatchSet builds a Registry from a fixed id->match mapping.
func NewMatchSet(matches map[string]MatchHandle) *MatchSet {
	return &MatchSet{matches: matches}
}

func (s *MatchSet) Get(id string) (MatchHandle, bool) {
	m, ok := s.matches[id]
	return m, ok
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability: construct a
// MatchSet from fakes and pass it straight to httptest.NewServer(NewRouter(cfg)).
type RouterConfig struct {
	// Registry resolves {id} path segments to running matches (required).
	Registry Registry

	// RateLimiter is an optional pre-configured rate limiter. If nil, one
	// is built from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig configures the rate limiter when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins.
	CORSOrigins []string

	// DisableLogging turns off the request logger middleware (useful for
	// benchmarks and quiet test output).
	DisableLogging bool
}

type routerHandlers struct {
	registry Registry
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// PURE: no goroutines started, no listeners opened — safe to pass to
// httptest.NewServer directly.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{registry: cfg.Registry}

	r.Route("/matches/{id}", func(r chi.Router) {
		r.Get("/snapshot", h.handleSnapshot)
		r.Get("/summary", h.handleSummary)
		r.Post("/shout", h.handleShout)
		r.Post("/substitution", h.handleSubstitution)
		r.Post("/tactics", h.handleTactics)
	})

	r.Get("/metrics", metricsHandler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
