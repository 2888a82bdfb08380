package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marketgrid/admin-gateway/internal/feed"
	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/pkg/logger"
	"github.com/marketgrid/admin-gateway/pkg/metrics"
)

const streamHeartbeat = 30 * time.Second

// StreamHandler serves the dashboard live stream over SSE.
type StreamHandler struct {
	sync   *feed.Synchronizer
	logger *logger.Logger
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(sync *feed.Synchronizer, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		sync:   sync,
		logger: log,
	}
}

// Stream handles GET /api/v1/feed/stream
//
// Events: "connected" (initial state), "item" (live prepend), "alert"
// (audio cue), "disconnected" (push channel dropped), "heartbeat".
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	events := h.sync.Subscribe()
	defer h.sync.Unsubscribe(events)

	sendSSEEvent(w, flusher, "connected", map[string]bool{
		"push_connected": h.sync.IsConnected(),
	})

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, string(event.Type), event)

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
