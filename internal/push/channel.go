// Package push provides transports for the realtime "new item" channel.
package push

import (
	"context"

	"github.com/marketgrid/admin-gateway/internal/model"
)

// Channel is a persistent connection delivering unsolicited new-item events.
//
// Implementations keep Items() stable across reconnects: Connect and
// Disconnect swap the underlying connection but the items channel lives for
// the transport's lifetime. At most one connection is open at a time;
// Connect tears down an existing one first, and Disconnect is safe to call
// when already disconnected.
type Channel interface {
	// Connect opens the connection authenticated with the bearer token.
	Connect(ctx context.Context, token string) error

	// Disconnect closes the connection if open.
	Disconnect()

	// Connected reports whether the connection is currently live.
	Connected() bool

	// Items delivers decoded new-item events in arrival order.
	Items() <-chan model.Item
}
