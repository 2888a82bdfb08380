package model

import (
	"time"
)

// FeedEventType represents the type of feed event fanned out to dashboards.
type FeedEventType string

const (
	FeedEventConnected    FeedEventType = "connected"
	FeedEventDisconnected FeedEventType = "disconnected"
	FeedEventItem         FeedEventType = "item"
	FeedEventAlert        FeedEventType = "alert"
	FeedEventHeartbeat    FeedEventType = "heartbeat"
)

// FeedEvent is one event on the dashboard live stream.
type FeedEvent struct {
	Type      FeedEventType `json:"type"`
	Item      *Item         `json:"item,omitempty"`
	Sound     string        `json:"sound,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// HeartbeatEvent represents a heartbeat event.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
