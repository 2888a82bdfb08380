package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/edit"
	"github.com/marketgrid/admin-gateway/internal/middleware"
	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/internal/service"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

// Assistant suggests a block reason for an item; optional.
type Assistant interface {
	SuggestBlockReason(ctx context.Context, item model.Item, reasons []model.BlockReason) (string, error)
}

// ItemHandler handles the item edit lifecycle.
type ItemHandler struct {
	moderation *service.ModerationService
	assistant  Assistant
	logger     *logger.Logger
}

// NewItemHandler creates an item handler. assistant may be nil.
func NewItemHandler(moderation *service.ModerationService, assistant Assistant, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		moderation: moderation,
		assistant:  assistant,
		logger:     log,
	}
}

// editResponse carries the working copy and its pending changes.
type editResponse struct {
	Item    model.Item          `json:"item"`
	Changed map[model.Field]any `json:"changed"`
}

// Get handles GET /api/v1/items/{uuid}
//
// Returns the working copy when a session is open, otherwise the upstream
// item as a fresh session would see it.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, changed, err := h.moderation.Working(uuid)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "no edit session open for item")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read session")
		return
	}

	writeJSON(w, http.StatusOK, editResponse{Item: item, Changed: changed})
}

// BeginEdit handles POST /api/v1/items/{uuid}/edit
func (h *ItemHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.moderation.BeginEdit(r.Context(), uuid)
	if err != nil {
		h.logger.Error("failed to begin edit", zap.String("uuid", uuid), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch item from upstream")
		return
	}

	writeJSON(w, http.StatusCreated, editResponse{Item: item, Changed: map[model.Field]any{}})
}

// setFieldsRequest is the body for PATCH /api/v1/items/{uuid}/edit.
// Either a set of generic field writes or a status transition.
type setFieldsRequest struct {
	Fields map[string]any `json:"fields,omitempty"`
	Status *model.Status  `json:"status,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// SetFields handles PATCH /api/v1/items/{uuid}/edit
func (h *ItemHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req setFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var item model.Item
	var err error

	switch {
	case req.Status != nil:
		if err := middleware.ValidateReason(req.Reason); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err = h.moderation.SetStatus(uuid, *req.Status, req.Reason)
	case len(req.Fields) > 0:
		item, err = h.moderation.SetFields(uuid, req.Fields)
	default:
		writeError(w, http.StatusBadRequest, "nothing to set")
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "no edit session open for item")
		return
	case errors.Is(err, edit.ErrReasonRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, service.ErrStatusViaSetFields):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, changed, werr := h.moderation.Working(uuid)
	if werr != nil {
		changed = map[model.Field]any{}
	}
	writeJSON(w, http.StatusOK, editResponse{Item: item, Changed: changed})
}

// CancelEdit handles DELETE /api/v1/items/{uuid}/edit
func (h *ItemHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.moderation.Cancel(uuid); err != nil {
		writeError(w, http.StatusNotFound, "no edit session open for item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CloseEdit handles DELETE /api/v1/items/{uuid}
//
// Ends the session entirely, discarding pending changes. Called when the
// detail view closes. Idempotent; closing an absent session is fine.
func (h *ItemHandler) CloseEdit(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.moderation.Close(uuid)
	w.WriteHeader(http.StatusNoContent)
}

// Commit handles POST /api/v1/items/{uuid}/commit
func (h *ItemHandler) Commit(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.moderation.Commit(r.Context(), uuid)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "no edit session open for item")
		return
	}
	if err != nil {
		// The session keeps its changes; the dashboard can retry.
		h.logger.Error("commit failed", zap.String("uuid", uuid), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to commit edit upstream")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Reasons handles GET /api/v1/reasons?kind=job
func (h *ItemHandler) Reasons(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(r.URL.Query().Get("kind"))

	reasons, err := h.moderation.Reasons(r.Context(), kind)
	if err != nil {
		h.logger.Error("failed to fetch reasons", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch block reasons")
		return
	}

	writeJSON(w, http.StatusOK, reasons)
}

// Assist handles POST /api/v1/items/{uuid}/assist
func (h *ItemHandler) Assist(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		writeError(w, http.StatusNotImplemented, "moderation assistant not configured")
		return
	}

	uuid := chi.URLParam(r, "uuid")
	if err := middleware.ValidateItemUUID(uuid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, _, err := h.moderation.Working(uuid)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "no edit session open for item")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read session")
		return
	}

	reasons, err := h.moderation.Reasons(r.Context(), item.Kind)
	if err != nil {
		reasons = nil
	}

	suggestion, err := h.assistant.SuggestBlockReason(r.Context(), item, reasons)
	if err != nil {
		h.logger.Error("assist failed", zap.String("uuid", uuid), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to generate suggestion")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}
