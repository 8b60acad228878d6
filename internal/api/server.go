package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP control-plane server: the chi router plus the
// WebSocket snapshot stream, which needs direct access to a registry the
// generic router factory doesn't carry.
//
// Grounded on the teacher's Server (internal/api/server.go).
type Server struct {
	registry    Registry
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a control-plane server for the given match registry.
//
// IMPORTANT: background workers do not start until Start() is called, so
// Router() can be used directly in httptest-based tests.
func NewServer(registry Registry) *Server {
	s := &Server{
		registry: registry,
		wsHub:    NewWebSocketHub(),
	}
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	s.router = NewRouter(RouterConfig{
		Registry:    registry,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/matches/{id}/ws", s.handleWS)
	return s
}

// Start begins serving HTTP. This is the only method that opens a
// network listener; call it once and let it block, or run it in a
// goroutine and call Stop on shutdown.
func (s *Server) Start(addr string) error {
	log.Printf("control plane listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler, for use with httptest.NewServer.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers (the rate
// limiter's cleanup goroutine). The WebSocket connections close on their
// own as their read loops observe the process exiting.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
