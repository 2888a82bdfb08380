package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

// NATSChannel delivers new-item events from a NATS subject.
//
// Client-side auto-reconnect is disabled: the feed watchdog owns the retry
// policy, so a dropped connection stays dropped until the watchdog redials.
type NATSChannel struct {
	url     string
	subject string
	logger  *logger.Logger

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription

	items chan model.Item
}

// NewNATSChannel creates a channel reading from the given subject.
func NewNATSChannel(url, subject string, log *logger.Logger) *NATSChannel {
	return &NATSChannel{
		url:     url,
		subject: subject,
		logger:  log,
		items:   make(chan model.Item, 256),
	}
}

// Connect dials the server and subscribes to the item subject. An existing
// connection is torn down first.
func (c *NATSChannel) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()

	opts := []nats.Option{
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.logger.Warn("push channel disconnected", zap.Error(err))
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(c.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	sub, err := conn.Subscribe(c.subject, c.handleMessage)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}

	c.conn = conn
	c.sub = sub
	return nil
}

func (c *NATSChannel) handleMessage(msg *nats.Msg) {
	var item model.Item
	if err := json.Unmarshal(msg.Data, &item); err != nil {
		c.logger.Warn("dropping undecodable push payload", zap.Error(err))
		return
	}

	select {
	case c.items <- item:
	default:
		c.logger.Warn("push buffer full, dropping item", zap.String("uuid", item.UUID))
	}
}

// Disconnect closes the connection. Safe to call when already closed.
func (c *NATSChannel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *NATSChannel) closeLocked() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Connected reports whether the NATS connection is live.
func (c *NATSChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Items delivers decoded new-item events. The channel survives reconnects.
func (c *NATSChannel) Items() <-chan model.Item {
	return c.items
}

var _ Channel = (*NATSChannel)(nil)
