package handler

import (
	"context"
	"net/http"

	"github.com/desslyhub/platform/internal/api/response"
)

// Pinger is the readiness probe surface of the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles liveness and readiness endpoints.
type Health struct {
	db Pinger
}

// NewHealth creates a new Health handler.
func NewHealth(db Pinger) *Health {
	return &Health{db: db}
}

// Ping is a trivial public reachability check.
func (h *Health) Ping(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// Healthz reports process liveness.
func (h *Health) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness to serve, which requires a reachable database.
func (h *Health) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		response.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
