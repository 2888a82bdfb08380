package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/prefs"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

// PrefsHandler exposes the dashboard preference store.
type PrefsHandler struct {
	store  *prefs.Store
	logger *logger.Logger
}

// NewPrefsHandler creates a preferences handler.
func NewPrefsHandler(store *prefs.Store, log *logger.Logger) *PrefsHandler {
	return &PrefsHandler{
		store:  store,
		logger: log,
	}
}

// GetAudio handles GET /api/v1/prefs/audio
func (h *PrefsHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	value, err := h.store.Get(r.Context(), prefs.KeyAudio)
	if err != nil {
		h.logger.Error("failed to read audio preference", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read preference")
		return
	}
	if value == "" {
		value = prefs.AudioUnmuted
	}
	writeJSON(w, http.StatusOK, map[string]string{"audio": value})
}

// SetAudio handles PUT /api/v1/prefs/audio
func (h *PrefsHandler) SetAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Audio string `json:"audio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Audio != prefs.AudioMuted && req.Audio != prefs.AudioUnmuted {
		writeError(w, http.StatusBadRequest, `audio must be "muted" or "unmuted"`)
		return
	}

	if err := h.store.Set(r.Context(), prefs.KeyAudio, req.Audio); err != nil {
		h.logger.Error("failed to write audio preference", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to write preference")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"audio": req.Audio})
}
