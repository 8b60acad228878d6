package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal caps concurrent snapshot-stream connections
	// across every match this process serves.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps connections from a single client.
	MaxWSConnectionsPerIP = 10

	// snapshotStreamInterval is the cadence at which a connected client
	// receives a fresh MatchSnapshot.
	snapshotStreamInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// WebSocketHub tracks connection counts for DoS protection. Unlike the
// teacher's hub (a single broadcast channel fanning the same game state
// out to every client), each client here subscribes to one match id and
// gets its own per-connection write loop — so there is no shared
// broadcast channel to manage, only the connection-limiting concern.
//
// Grounded on the teacher's WebSocketHub (internal/api/websocket.go).
type WebSocketHub struct {
	mu        sync.Mutex
	total     int
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub with connection limiting.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP)}
}

func (h *WebSocketHub) reserve(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.total >= MaxWSConnectionsTotal {
		return false
	}
	if !h.wsLimiter.Allow(ip) {
		return false
	}
	h.total++
	UpdateWSConnections(h.total)
	return true
}

func (h *WebSocketHub) release(ip string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wsLimiter.Release(ip)
	if h.total > 0 {
		h.total--
	}
	UpdateWSConnections(h.total)
}

// handleWS upgrades the connection and streams MatchSnapshot values for
// the {id} match at a fixed cadence until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	ip := GetClientIP(r)
	if !s.wsHub.reserve(ip) {
		log.Printf("websocket connection rejected from %s: connection limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wsHub.release(ip)
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer func() {
		conn.Close()
		s.wsHub.release(ip)
	}()

	// Drain (and discard) client reads so a dropped connection is
	// detected promptly; this stream is read-only by design.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(snapshotStreamInterval)
	defer ticker.Stop()
	for range ticker.C {
		snap := m.GetSnapshot()
		payload, err := json.Marshal(snap)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
		IncrementWSMessages()
	}
}
