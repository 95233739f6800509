package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/matchfeed"
)

// StatusSource reports the session summary for /stats.
type StatusSource interface {
	Status(ctx context.Context) (match.Status, error)
}

// FeedSource reports match feed delivery for /stats.
type FeedSource interface {
	Stats() matchfeed.Stats
}

// WebSocketHandler serves the socket endpoint and the plain HTTP probes.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	router            *Router
	status            StatusSource
	feed              FeedSource
}

type HandlerOption func(*WebSocketHandler)

// WithFeedStats adds match feed counters to /stats.
func WithFeedStats(f FeedSource) HandlerOption {
	return func(h *WebSocketHandler) { h.feed = f }
}

func NewWebSocketHandler(cm *ConnectionManager, router *Router, status StatusSource, opts ...HandlerOption) *WebSocketHandler {
	h := &WebSocketHandler{
		connectionManager: cm,
		router:            router,
		status:            status,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleConnection upgrades a client to WebSocket and joins it to the session.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.connectionManager.UpgradeConnection(w, r, h.router); err != nil {
		// The upgrader has already written an HTTP error response.
		log.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
	}
}

type statsResponse struct {
	ConnectionStats
	Session *match.Status    `json:"session,omitempty"`
	Feed    *matchfeed.Stats `json:"feed,omitempty"`
}

// HandleConnectionStats returns connection counts and the session summary.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{ConnectionStats: h.connectionManager.GetConnectionStats()}
	if h.status != nil {
		st, err := h.status.Status(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("session status unavailable")
		} else {
			resp.Session = &st
		}
	}
	if h.feed != nil {
		fs := h.feed.Stats()
		resp.Feed = &fs
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

func (h *WebSocketHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// RegisterRoutes registers the gateway routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.HandleConnection)
	mux.HandleFunc("GET /stats", h.HandleConnectionStats)
	mux.HandleFunc("GET /health", h.HandleHealth)
}
