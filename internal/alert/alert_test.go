package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/internal/prefs"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

type stubPrefs struct {
	value string
	err   error
}

func (p *stubPrefs) Get(ctx context.Context, key string) (string, error) {
	return p.value, p.err
}

func newNotifier(t *testing.T, p *stubPrefs) (*AudioNotifier, *[]model.FeedEvent) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)

	var events []model.FeedEvent
	sink := func(ev model.FeedEvent) { events = append(events, ev) }
	return NewAudioNotifier(p, sink, "new-item", log), &events
}

func TestNewItemEmitsAlertWhenUnmuted(t *testing.T) {
	n, events := newNotifier(t, &stubPrefs{value: prefs.AudioUnmuted})

	n.NewItem(context.Background(), model.Item{UUID: "a"})

	require.Len(t, *events, 1)
	assert.Equal(t, model.FeedEventAlert, (*events)[0].Type)
	assert.Equal(t, "new-item", (*events)[0].Sound)
}

func TestNewItemSilentWhenMuted(t *testing.T) {
	n, events := newNotifier(t, &stubPrefs{value: prefs.AudioMuted})

	n.NewItem(context.Background(), model.Item{UUID: "a"})

	assert.Empty(t, *events)
}

func TestNewItemDefaultsToUnmutedWhenUnset(t *testing.T) {
	n, events := newNotifier(t, &stubPrefs{value: ""})

	n.NewItem(context.Background(), model.Item{UUID: "a"})

	assert.Len(t, *events, 1)
}

func TestNewItemTreatsReadFailureAsUnmuted(t *testing.T) {
	n, events := newNotifier(t, &stubPrefs{err: errors.New("db locked")})

	n.NewItem(context.Background(), model.Item{UUID: "a"})

	assert.Len(t, *events, 1)
}

func TestEveryLiveItemGetsItsOwnCue(t *testing.T) {
	n, events := newNotifier(t, &stubPrefs{value: prefs.AudioUnmuted})

	n.NewItem(context.Background(), model.Item{UUID: "a"})
	n.NewItem(context.Background(), model.Item{UUID: "b"})

	assert.Len(t, *events, 2)
}
