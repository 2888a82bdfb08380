package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/model"
	"github.com/marketgrid/admin-gateway/pkg/logger"
)

const wsHandshakeTimeout = 10 * time.Second

// WebsocketChannel delivers new-item events over a websocket. The bearer
// token is attached as a header at dial time. A read error marks the channel
// disconnected and leaves reconnection to the feed watchdog.
type WebsocketChannel struct {
	url    string
	logger *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool

	items chan model.Item
}

// NewWebsocketChannel creates a channel dialing the given websocket URL.
func NewWebsocketChannel(url string, log *logger.Logger) *WebsocketChannel {
	return &WebsocketChannel{
		url:    url,
		logger: log,
		items:  make(chan model.Item, 256),
	}
}

// Connect dials the socket, authenticating with the bearer token. An
// existing connection is torn down first.
func (c *WebsocketChannel) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}
	if resp != nil {
		resp.Body.Close()
	}

	c.conn = conn
	c.connected.Store(true)
	go c.readLoop(conn)
	return nil
}

// readLoop reads until the connection fails or is closed, pumping decoded
// items into the shared items channel.
func (c *WebsocketChannel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.connected.Store(false)
				c.conn = nil
				conn.Close()
				c.logger.Warn("push channel read failed", zap.Error(err))
			}
			c.mu.Unlock()
			return
		}

		var item model.Item
		if err := json.Unmarshal(data, &item); err != nil {
			c.logger.Warn("dropping undecodable push payload", zap.Error(err))
			continue
		}

		select {
		case c.items <- item:
		default:
			c.logger.Warn("push buffer full, dropping item", zap.String("uuid", item.UUID))
		}
	}
}

// Disconnect closes the socket. Safe to call when already closed.
func (c *WebsocketChannel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *WebsocketChannel) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected.Store(false)
}

// Connected reports whether the socket is currently live.
func (c *WebsocketChannel) Connected() bool {
	return c.connected.Load()
}

// Items delivers decoded new-item events. The channel survives reconnects.
func (c *WebsocketChannel) Items() <-chan model.Item {
	return c.items
}

var _ Channel = (*WebsocketChannel)(nil)
