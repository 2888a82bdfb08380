// Package handler provides HTTP handlers for the admin gateway API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/feed"
	"github.com/marketgrid/admin-gateway/internal/middleware"
	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

// FeedHandler handles the merged live feed endpoints.
type FeedHandler struct {
	sync   *feed.Synchronizer
	limit  int
	logger *logger.Logger
}

// NewFeedHandler creates a feed handler with the default page limit.
func NewFeedHandler(sync *feed.Synchronizer, limit int, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		sync:   sync,
		limit:  limit,
		logger: log,
	}
}

// feedResponse is the snapshot returned by GET /feed.
type feedResponse struct {
	Items     []model.Item  `json:"items"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
	Total     int           `json:"total"`
	HasMore   bool          `json:"has_more"`
	Connected bool          `json:"connected"`
	Filters   model.Filters `json:"filters"`
}

// Snapshot handles GET /api/v1/feed
func (h *FeedHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	items, cursor := h.sync.Snapshot()

	writeJSON(w, http.StatusOK, feedResponse{
		Items:     items,
		Page:      cursor.Page(),
		Limit:     cursor.Limit(),
		Total:     cursor.Total(),
		HasMore:   cursor.HasMore(),
		Connected: h.sync.IsConnected(),
		Filters:   h.sync.Filters(),
	})
}

// loadPageRequest is the body for POST /api/v1/feed/pages.
type loadPageRequest struct {
	Page    int           `json:"page"`
	Limit   int           `json:"limit,omitempty"`
	Filters model.Filters `json:"filters"`
}

// LoadPage handles POST /api/v1/feed/pages
func (h *FeedHandler) LoadPage(w http.ResponseWriter, r *http.Request) {
	var req loadPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = h.limit
	}
	if err := middleware.ValidatePageLimit(req.Limit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateSearchTerm(req.Filters.Term); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.sync.LoadPage(r.Context(), req.Page, req.Limit, req.Filters)
	if err != nil {
		if errors.Is(err, feed.ErrFetchInFlight) {
			writeError(w, http.StatusConflict, "a page fetch is already in flight")
			return
		}
		h.logger.Error("page fetch failed", zap.Int("page", req.Page), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch items from upstream")
		return
	}

	_, cursor := h.sync.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"result":   result.Result,
		"page":     cursor.Page(),
		"total":    cursor.Total(),
		"has_more": cursor.HasMore(),
	})
}
