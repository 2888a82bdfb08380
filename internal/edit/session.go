// Package edit implements partial-edit tracking for items: a working copy is
// edited against an immutable original, and only true deltas are sent to the
// update endpoint.
package edit

import (
	"context"
	"errors"
	"strings"

	"github.com/marketgrid/admin-gateway/internal/model"
)

// ErrReasonRequired is returned when an item is moved into the blocked state
// without a non-empty reason.
var ErrReasonRequired = errors.New("blocking an item requires a non-empty reason")

// UpdateFunc sends a partial update to the upstream and returns the
// canonical updated entity.
type UpdateFunc func(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error)

// Session tracks an in-progress edit of one item.
//
// Invariant: a field appears in the change set only while its working value
// differs from the original value. A write that returns a field to its
// original value removes it immediately; the session keeps no edit history.
type Session struct {
	original model.Item
	working  model.Item
	changed  map[model.Field]any
}

// Begin captures the entity as the original snapshot and starts a session
// with an identical working copy and an empty change set.
func Begin(item model.Item) *Session {
	return &Session{
		original: item,
		working:  item,
		changed:  make(map[model.Field]any),
	}
}

// Original returns the snapshot the session diffs against.
func (s *Session) Original() model.Item {
	return s.original
}

// Working returns the current working copy.
func (s *Session) Working() model.Item {
	return s.working
}

// Changed returns a copy of the current change set.
func (s *Session) Changed() map[model.Field]any {
	out := make(map[model.Field]any, len(s.changed))
	for f, v := range s.changed {
		out[f] = v
	}
	return out
}

// HasChanges reports whether any field currently differs from the original.
func (s *Session) HasChanges() bool {
	return len(s.changed) > 0
}

// SetField writes a field on the working copy and recomputes its membership
// in the change set against the original value.
func (s *Session) SetField(f model.Field, v any) error {
	if err := s.working.SetFieldValue(f, v); err != nil {
		return err
	}
	orig, err := s.original.FieldValue(f)
	if err != nil {
		return err
	}
	if orig == v {
		delete(s.changed, f)
	} else {
		s.changed[f] = v
	}
	return nil
}

// SetStatus transitions the moderation status with the status-note rule
// applied: entering blocked requires a reason that becomes the status note,
// and any other status clears the note.
func (s *Session) SetStatus(status model.Status, reason string) error {
	if status == model.StatusBlocked {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrReasonRequired
		}
		if err := s.SetField(model.FieldStatus, status); err != nil {
			return err
		}
		return s.SetField(model.FieldStatusNote, reason)
	}

	if err := s.SetField(model.FieldStatus, status); err != nil {
		return err
	}
	return s.SetField(model.FieldStatusNote, nil)
}

// Cancel discards all edits: the working copy reverts to the original and
// the change set empties.
func (s *Session) Cancel() {
	s.working = s.original
	s.changed = make(map[model.Field]any)
}

// Commit sends the change set through update and adopts the server's
// canonical entity as the new original. An empty change set skips the
// network entirely and returns the unchanged entity. On failure the session
// is left intact, changes included, so the caller can retry.
func (s *Session) Commit(ctx context.Context, update UpdateFunc) (model.Item, error) {
	if len(s.changed) == 0 {
		return s.working, nil
	}

	updated, err := update(ctx, s.original.UUID, s.Changed())
	if err != nil {
		return model.Item{}, err
	}

	s.original = *updated
	s.working = *updated
	s.changed = make(map[model.Field]any)
	return *updated, nil
}
