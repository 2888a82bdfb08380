// Package service implements the gateway's business operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/edit"
	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/pkg/logger"
	"github.com/marketgrid/admin-gateway/pkg/metrics"
)

// ErrSessionNotFound is returned when an edit operation targets an item
// without an open session.
var ErrSessionNotFound = errors.New("no edit session open for item")

// ErrStatusViaSetFields is returned when a status change is attempted
// through the generic field path instead of the status operation.
var ErrStatusViaSetFields = errors.New("status changes must go through the status operation")

// Upstream is the slice of the marketplace API the moderation flow needs.
type Upstream interface {
	GetItem(ctx context.Context, uuid string) (*model.Item, error)
	UpdateItem(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error)
	BlockReasons(ctx context.Context, kind model.Kind) ([]model.BlockReason, error)
}

// Feed receives committed updates so open list views stay current.
type Feed interface {
	ReplaceByKey(updated model.Item) bool
}

// ModerationService owns edit sessions keyed by item UUID and applies
// commits through the upstream partial-update endpoint.
type ModerationService struct {
	upstream Upstream
	feed     Feed
	logger   *logger.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// sessionEntry serializes operations on one item's session.
type sessionEntry struct {
	mu      sync.Mutex
	session *edit.Session
}

// NewModerationService creates a moderation service.
func NewModerationService(upstream Upstream, feed Feed, log *logger.Logger) *ModerationService {
	return &ModerationService{
		upstream: upstream,
		feed:     feed,
		logger:   log,
		sessions: make(map[string]*sessionEntry),
	}
}

// BeginEdit fetches the item from upstream and opens a fresh session for it,
// replacing any session already open: the snapshot is captured at the moment
// the detail view opens.
func (s *ModerationService) BeginEdit(ctx context.Context, uuid string) (model.Item, error) {
	item, err := s.upstream.GetItem(ctx, uuid)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to fetch item: %w", err)
	}

	s.mu.Lock()
	s.sessions[uuid] = &sessionEntry{session: edit.Begin(*item)}
	s.mu.Unlock()

	return *item, nil
}

// Working returns the working copy and current change set of an open
// session.
func (s *ModerationService) Working(uuid string) (model.Item, map[model.Field]any, error) {
	entry, err := s.entry(uuid)
	if err != nil {
		return model.Item{}, nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Working(), entry.session.Changed(), nil
}

// SetFields applies raw JSON-decoded field writes to the working copy.
// Status and status note are rejected here; they carry a validation rule and
// go through SetStatus.
func (s *ModerationService) SetFields(uuid string, raw map[string]any) (model.Item, error) {
	entry, err := s.entry(uuid)
	if err != nil {
		return model.Item{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for name, value := range raw {
		field := model.Field(name)
		if field == model.FieldStatus || field == model.FieldStatusNote {
			return model.Item{}, ErrStatusViaSetFields
		}
		parsed, err := model.ParseFieldValue(field, value)
		if err != nil {
			return model.Item{}, err
		}
		if err := entry.session.SetField(field, parsed); err != nil {
			return model.Item{}, err
		}
	}

	return entry.session.Working(), nil
}

// SetStatus transitions the working copy's moderation status. Blocking
// requires a non-empty reason, which becomes the status note; leaving the
// blocked state clears the note.
func (s *ModerationService) SetStatus(uuid string, status model.Status, reason string) (model.Item, error) {
	if !status.Valid() {
		return model.Item{}, fmt.Errorf("unknown status %q", status)
	}

	entry, err := s.entry(uuid)
	if err != nil {
		return model.Item{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.SetStatus(status, reason); err != nil {
		return model.Item{}, err
	}
	return entry.session.Working(), nil
}

// Cancel reverts the session to its original snapshot. The session stays
// open.
func (s *ModerationService) Cancel(uuid string) error {
	entry, err := s.entry(uuid)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Cancel()
	return nil
}

// Commit sends the session's change set upstream. An empty change set makes
// no network call. On success the canonical item is pushed into the feed and
// adopted as the session's new original; on failure the session is left
// intact for retry.
func (s *ModerationService) Commit(ctx context.Context, uuid string) (model.Item, error) {
	entry, err := s.entry(uuid)
	if err != nil {
		return model.Item{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	hadChanges := entry.session.HasChanges()
	item, err := entry.session.Commit(ctx, s.upstream.UpdateItem)
	if err != nil {
		metrics.EditCommitsTotal.WithLabelValues("error").Inc()
		return model.Item{}, fmt.Errorf("failed to commit edit: %w", err)
	}

	if hadChanges {
		metrics.EditCommitsTotal.WithLabelValues("success").Inc()
		if !s.feed.ReplaceByKey(item) {
			s.logger.Debug("committed item not present in feed", zap.String("uuid", uuid))
		}
	}

	return item, nil
}

// Close removes the session for an item, discarding any pending changes.
func (s *ModerationService) Close(uuid string) {
	s.mu.Lock()
	delete(s.sessions, uuid)
	s.mu.Unlock()
}

// Reasons returns the valid block reasons for an item subtype.
func (s *ModerationService) Reasons(ctx context.Context, kind model.Kind) ([]model.BlockReason, error) {
	reasons, err := s.upstream.BlockReasons(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch block reasons: %w", err)
	}
	return reasons, nil
}

func (s *ModerationService) entry(uuid string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[uuid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}
