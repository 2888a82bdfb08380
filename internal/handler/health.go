package handler

import (
	"net/http"

	"github.com/marketgrid/admin-gateway/internal/feed"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sync *feed.Synchronizer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(sync *feed.Synchronizer) *HealthHandler {
	return &HealthHandler{sync: sync}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
//
// The gateway is degraded, not down, when the push channel is out: pull
// fetches still work and the watchdog keeps retrying. Report it rather than
// failing readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ready",
		"push_connected": h.sync.IsConnected(),
	})
}
