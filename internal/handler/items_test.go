package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/internal/service"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

const itemUUID = "7f1c5a9e-4b2d-4c8e-9f3a-1d2e3f4a5b6c"

type stubUpstream struct {
	items     map[string]model.Item
	updateErr error
	reasons   []model.BlockReason
}

func (u *stubUpstream) GetItem(ctx context.Context, uuid string) (*model.Item, error) {
	item, ok := u.items[uuid]
	if !ok {
		return nil, errors.New("not found")
	}
	return &item, nil
}

func (u *stubUpstream) UpdateItem(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error) {
	if u.updateErr != nil {
		return nil, u.updateErr
	}
	item := u.items[uuid]
	for f, v := range fields {
		if err := item.SetFieldValue(f, v); err != nil {
			return nil, err
		}
	}
	u.items[uuid] = item
	return &item, nil
}

func (u *stubUpstream) BlockReasons(ctx context.Context, kind model.Kind) ([]model.BlockReason, error) {
	return u.reasons, nil
}

type stubFeed struct{}

func (stubFeed) ReplaceByKey(model.Item) bool { return true }

func newItemRouter(t *testing.T) (*chi.Mux, *stubUpstream) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)

	up := &stubUpstream{items: map[string]model.Item{
		itemUUID: {UUID: itemUUID, Kind: model.KindListing, Title: "Sofa", Status: model.StatusActive},
	}}
	moderation := service.NewModerationService(up, stubFeed{}, log)
	h := NewItemHandler(moderation, nil, log)

	r := chi.NewRouter()
	r.Route("/items/{uuid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.CloseEdit)
		r.Post("/edit", h.BeginEdit)
		r.Patch("/edit", h.SetFields)
		r.Delete("/edit", h.CancelEdit)
		r.Post("/commit", h.Commit)
		r.Post("/assist", h.Assist)
	})
	return r, up
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBeginEditReturnsSnapshot(t *testing.T) {
	r, _ := newItemRouter(t)

	rec := do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Item    model.Item     `json:"item"`
		Changed map[string]any `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sofa", resp.Item.Title)
	assert.Empty(t, resp.Changed)
}

func TestBeginEditRejectsBadUUID(t *testing.T) {
	r, _ := newItemRouter(t)
	rec := do(t, r, http.MethodPost, "/items/not-a-uuid/edit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWithoutSessionIs404(t *testing.T) {
	r, _ := newItemRouter(t)
	rec := do(t, r, http.MethodGet, "/items/"+itemUUID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetFieldsReportsChangeSet(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)

	rec := do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"title": "Leather sofa"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item    model.Item     `json:"item"`
		Changed map[string]any `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Leather sofa", resp.Item.Title)
	assert.Equal(t, map[string]any{"title": "Leather sofa"}, resp.Changed)
}

func TestSetFieldsRejectsStatusThroughFields(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)

	rec := do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"status": "blocked"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlockWithoutReasonIs422(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)

	rec := do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"status": "blocked",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBlockWithReasonSetsNote(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)

	rec := do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"status": "blocked",
		"reason": "counterfeit goods",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item model.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.StatusBlocked, resp.Item.Status)
	require.NotNil(t, resp.Item.StatusNote)
	assert.Equal(t, "counterfeit goods", *resp.Item.StatusNote)
}

func TestCommitFlow(t *testing.T) {
	r, up := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)
	do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"title": "Leather sofa"},
	})

	rec := do(t, r, http.MethodPost, "/items/"+itemUUID+"/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Leather sofa", up.items[itemUUID].Title)
}

func TestCommitFailureIs502AndRetryable(t *testing.T) {
	r, up := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)
	do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"title": "Leather sofa"},
	})

	up.updateErr = errors.New("upstream down")
	rec := do(t, r, http.MethodPost, "/items/"+itemUUID+"/commit", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	up.updateErr = nil
	rec = do(t, r, http.MethodPost, "/items/"+itemUUID+"/commit", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Leather sofa", up.items[itemUUID].Title)
}

func TestCancelEdit(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)
	do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"title": "Leather sofa"},
	})

	rec := do(t, r, http.MethodDelete, "/items/"+itemUUID+"/edit", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/items/"+itemUUID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item    model.Item     `json:"item"`
		Changed map[string]any `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sofa", resp.Item.Title)
	assert.Empty(t, resp.Changed)
}

func TestCloseEditEndsSession(t *testing.T) {
	r, _ := newItemRouter(t)
	do(t, r, http.MethodPost, "/items/"+itemUUID+"/edit", nil)
	do(t, r, http.MethodPatch, "/items/"+itemUUID+"/edit", map[string]any{
		"fields": map[string]any{"title": "Leather sofa"},
	})

	rec := do(t, r, http.MethodDelete, "/items/"+itemUUID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Pending changes are gone with the session.
	rec = do(t, r, http.MethodGet, "/items/"+itemUUID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Closing again is a no-op.
	rec = do(t, r, http.MethodDelete, "/items/"+itemUUID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssistWithoutAssistantIs501(t *testing.T) {
	r, _ := newItemRouter(t)
	rec := do(t, r, http.MethodPost, "/items/"+itemUUID+"/assist", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
