package mt5

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// StreamConfig configures the trade event stream client.
type StreamConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// TradeEvent is one closed-trade notification from the bridge stream.
type TradeEvent struct {
	Login string        `json:"login"`
	Trade *TradePayload `json:"trade"`
}

// StreamClient consumes the bridge's trade event stream over WebSocket and
// fans events out to per-login subscribers. Connection drops are handled
// with exponential-backoff reconnect and automatic resubscription.
type StreamClient struct {
	endpoint string
	config   StreamConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// subs maps broker login to event channel
	subs   map[string]chan TradeEvent
	subsMu sync.RWMutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewStreamClient creates a stream client and connects to the endpoint.
func NewStreamClient(ctx context.Context, endpoint string, config *StreamConfig, logger *log.Logger) (*StreamClient, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &StreamClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		subs:     make(map[string]chan TradeEvent),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *StreamClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Subscribe registers for closed-trade events on a broker login. The
// returned channel is closed when the client shuts down.
func (c *StreamClient) Subscribe(ctx context.Context, login string) (<-chan TradeEvent, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	if err := c.sendSubscribe(login); err != nil {
		return nil, err
	}

	// Buffer absorbs bursts; sends block rather than drop events.
	ch := make(chan TradeEvent, 1024)
	c.subsMu.Lock()
	c.subs[login] = ch
	c.subsMu.Unlock()

	return ch, nil
}

// sendSubscribe writes the subscribe frame for a login.
func (c *StreamClient) sendSubscribe(login string) error {
	req := streamRequest{Action: "subscribe", Login: login}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and all subscriber channels.
func (c *StreamClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for login, ch := range c.subs {
		close(ch)
		delete(c.subs, login)
	}
	c.subsMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages and dispatches to subscribers.
func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			// Exponential backoff for the next reconnect
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *StreamClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.logger.Printf("[mt5] stream reconnect failed: %v", err)
		return
	}

	// Resubscribe all logins on the fresh connection
	c.subsMu.RLock()
	logins := make([]string, 0, len(c.subs))
	for login := range c.subs {
		logins = append(logins, login)
	}
	c.subsMu.RUnlock()

	for _, login := range logins {
		if err := c.sendSubscribe(login); err != nil {
			c.logger.Printf("[mt5] resubscribe %s failed: %v", login, err)
		}
	}
}

// handleMessage processes one incoming frame.
func (c *StreamClient) handleMessage(message []byte) {
	var notif streamNotification
	if err := json.Unmarshal(message, &notif); err != nil {
		c.logger.Printf("[mt5] unparseable stream frame: %v", err)
		return
	}
	if notif.Event != "trade.closed" || notif.Trade == nil {
		return
	}

	c.subsMu.RLock()
	ch, ok := c.subs[notif.Login]
	c.subsMu.RUnlock()

	if ok {
		// Block until delivered; events must not be dropped.
		select {
		case ch <- TradeEvent{Login: notif.Login, Trade: notif.Trade}:
		case <-c.done:
			return
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// A failed ping surfaces as a read error; the reader
				// owns reconnection.
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Stream message types

type streamRequest struct {
	Action string `json:"action"`
	Login  string `json:"login"`
}

type streamNotification struct {
	Event string        `json:"event"`
	Login string        `json:"login"`
	Trade *TradePayload `json:"trade"`
}
