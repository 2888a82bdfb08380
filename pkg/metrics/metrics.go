// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// FeedPullsTotal tracks paged fetches from the upstream item list.
	FeedPullsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_pulls_total",
			Help: "Paged item list fetches by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	// LiveItemsTotal tracks items arriving over the push channel.
	LiveItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_live_items_total",
			Help: "Items received over the push channel",
		},
	)

	// PushReconnectsTotal tracks watchdog reconnect attempts.
	PushReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_reconnects_total",
			Help: "Push channel reconnect attempts by the watchdog",
		},
	)

	// PushConnected reflects push channel liveness (1 connected, 0 not).
	PushConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "push_connected",
			Help: "Whether the push channel is currently connected",
		},
	)

	// SSEConnectionsActive tracks active dashboard stream connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// EditCommitsTotal tracks edit commits by outcome.
	EditCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edit_commits_total",
			Help: "Edit session commits by outcome",
		},
		[]string{"status"},
	)

	// AlertsTotal tracks audio alert decisions.
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_total",
			Help: "Audio alert decisions by result",
		},
		[]string{"result"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
