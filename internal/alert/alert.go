// Package alert raises the audio cue for newly arrived items, honoring the
// persisted mute preference.
package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/internal/prefs"
	"github.com/marketgrid/admin-gateway/pkg/logger"
	"github.com/marketgrid/admin-gateway/pkg/metrics"
)

// PrefReader reads the persisted mute preference.
type PrefReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Sink receives the alert event; wired to the feed's event fan-out.
type Sink func(model.FeedEvent)

// AudioNotifier emits a sound-cue event for each live item unless the audio
// preference is muted. The preference is read once per alert decision.
// Concurrent alerts are not debounced; each live item produces its own cue.
type AudioNotifier struct {
	prefs  PrefReader
	sink   Sink
	sound  string
	logger *logger.Logger
}

// NewAudioNotifier creates a notifier playing the named sound.
func NewAudioNotifier(prefs PrefReader, sink Sink, sound string, log *logger.Logger) *AudioNotifier {
	return &AudioNotifier{
		prefs:  prefs,
		sink:   sink,
		sound:  sound,
		logger: log,
	}
}

// NewItem fires the cue for one live item. A preference read failure is
// logged and treated as unmuted.
func (n *AudioNotifier) NewItem(ctx context.Context, item model.Item) {
	value, err := n.prefs.Get(ctx, prefs.KeyAudio)
	if err != nil {
		n.logger.Warn("failed to read audio preference", zap.Error(err))
	}
	if value == prefs.AudioMuted {
		metrics.AlertsTotal.WithLabelValues("muted").Inc()
		return
	}

	metrics.AlertsTotal.WithLabelValues("played").Inc()
	n.sink(model.FeedEvent{
		Type:      model.FeedEventAlert,
		Sound:     n.sound,
		Timestamp: time.Now(),
	})
}
