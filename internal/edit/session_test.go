package edit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/admin-gateway/internal/model"
)

func listing() model.Item {
	return model.Item{
		UUID:     "11111111-1111-1111-1111-111111111111",
		ID:       42,
		Kind:     model.KindListing,
		Title:    "City bike",
		Price:    120.0,
		Currency: "EUR",
		City:     "Riga",
		Status:   model.StatusActive,
	}
}

func TestSetFieldEntersChangeSet(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))

	assert.True(t, s.HasChanges())
	assert.Equal(t, map[model.Field]any{model.FieldTitle: "Road bike"}, s.Changed())
	assert.Equal(t, "Road bike", s.Working().Title)
	assert.Equal(t, "City bike", s.Original().Title)
}

func TestSetFieldBackToOriginalLeavesChangeSet(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))
	require.NoError(t, s.SetField(model.FieldTitle, "City bike"))

	assert.False(t, s.HasChanges())
	assert.Empty(t, s.Changed())
}

func TestSetFieldTracksEachFieldIndependently(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))
	require.NoError(t, s.SetField(model.FieldPrice, 99.5))
	require.NoError(t, s.SetField(model.FieldTitle, "City bike"))

	assert.Equal(t, map[model.Field]any{model.FieldPrice: 99.5}, s.Changed())
}

func TestSetFieldPointerFieldReconverges(t *testing.T) {
	item := listing()
	item.Kind = model.KindJob
	seeking := true
	item.EmployeeSeeking = &seeking

	s := Begin(item)

	require.NoError(t, s.SetField(model.FieldEmployeeSeeking, false))
	assert.True(t, s.HasChanges())

	// The original holds a pointer, but normalized values compare by value.
	require.NoError(t, s.SetField(model.FieldEmployeeSeeking, true))
	assert.False(t, s.HasChanges())
}

func TestCancelRevertsWorkingCopy(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))
	require.NoError(t, s.SetField(model.FieldPrice, 99.5))

	s.Cancel()

	assert.False(t, s.HasChanges())
	assert.Equal(t, s.Original(), s.Working())
}

func TestCommitSendsOnlyDeltas(t *testing.T) {
	s := Begin(listing())
	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))
	require.NoError(t, s.SetField(model.FieldCity, "Riga")) // unchanged, drops out

	var sentUUID string
	var sentFields map[model.Field]any
	update := func(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error) {
		sentUUID = uuid
		sentFields = fields
		updated := listing()
		updated.Title = "Road bike"
		return &updated, nil
	}

	got, err := s.Commit(context.Background(), update)
	require.NoError(t, err)

	assert.Equal(t, s.Original().UUID, sentUUID)
	assert.Equal(t, map[model.Field]any{model.FieldTitle: "Road bike"}, sentFields)
	assert.Equal(t, "Road bike", got.Title)
	assert.False(t, s.HasChanges())

	// The server's entity is the new baseline.
	assert.Equal(t, got, s.Original())
	assert.Equal(t, got, s.Working())
}

func TestCommitEmptyDiffSkipsNetwork(t *testing.T) {
	s := Begin(listing())

	called := false
	update := func(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error) {
		called = true
		return nil, errors.New("should not be called")
	}

	got, err := s.Commit(context.Background(), update)
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, s.Working(), got)
}

func TestCommitFailureKeepsSession(t *testing.T) {
	s := Begin(listing())
	require.NoError(t, s.SetField(model.FieldTitle, "Road bike"))

	update := func(ctx context.Context, uuid string, fields map[model.Field]any) (*model.Item, error) {
		return nil, errors.New("upstream down")
	}

	_, err := s.Commit(context.Background(), update)
	require.Error(t, err)

	assert.True(t, s.HasChanges())
	assert.Equal(t, "Road bike", s.Working().Title)
	assert.Equal(t, "City bike", s.Original().Title)
}

func TestSetStatusBlockedRequiresReason(t *testing.T) {
	s := Begin(listing())

	err := s.SetStatus(model.StatusBlocked, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	err = s.SetStatus(model.StatusBlocked, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	assert.False(t, s.HasChanges())
}

func TestSetStatusBlockedSetsStatusNote(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetStatus(model.StatusBlocked, "counterfeit goods"))

	changed := s.Changed()
	assert.Equal(t, model.StatusBlocked, changed[model.FieldStatus])
	assert.Equal(t, "counterfeit goods", changed[model.FieldStatusNote])

	require.NotNil(t, s.Working().StatusNote)
	assert.Equal(t, "counterfeit goods", *s.Working().StatusNote)
}

func TestSetStatusLeavingBlockedClearsNote(t *testing.T) {
	item := listing()
	item.Status = model.StatusBlocked
	note := "spam"
	item.StatusNote = &note

	s := Begin(item)
	require.NoError(t, s.SetStatus(model.StatusActive, ""))

	changed := s.Changed()
	assert.Equal(t, model.StatusActive, changed[model.FieldStatus])

	// The cleared note is an explicit null in the delta, not an omission.
	cleared, present := changed[model.FieldStatusNote]
	assert.True(t, present)
	assert.Nil(t, cleared)
	assert.Nil(t, s.Working().StatusNote)
}

func TestSetStatusBetweenUnblockedStatesKeepsNilNote(t *testing.T) {
	s := Begin(listing()) // active, note already nil

	require.NoError(t, s.SetStatus(model.StatusArchived, ""))

	changed := s.Changed()
	assert.Equal(t, model.StatusArchived, changed[model.FieldStatus])

	// nil to nil is no change, so the note stays out of the delta.
	_, present := changed[model.FieldStatusNote]
	assert.False(t, present)
}

func TestSetStatusBackAndForthReconverges(t *testing.T) {
	s := Begin(listing())

	require.NoError(t, s.SetStatus(model.StatusBlocked, "spam"))
	require.NoError(t, s.SetStatus(model.StatusActive, ""))

	assert.False(t, s.HasChanges())
}
