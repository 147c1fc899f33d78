// Package realtime keeps a displayed order or reservation current. It holds
// a websocket connection to the TAMU realtime gateway and merges pushed
// status updates into a local view, with interval REST re-fetching as the
// fallback while the connection is down.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ConnState string

const (
	StateIdle         ConnState = "idle"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateUnauthorized ConnState = "unauthorized"
	StateDisconnected ConnState = "disconnected"
	StateError        ConnState = "error"
)

// Socket is the subset of *websocket.Conn the client uses.
type Socket interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Dialer opens a socket to the gateway. The default wraps gorilla's dialer;
// tests substitute their own.
type Dialer func(ctx context.Context, url string, header http.Header) (Socket, error)

func GorillaDialer(ctx context.Context, url string, header http.Header) (Socket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Frame is the gateway wire format, both directions.
type Frame struct {
	Event  string          `json:"event"`
	Token  string          `json:"token,omitempty"`
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status,omitempty"`
	TS     int64           `json:"ts,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Conn is one authenticated gateway connection scoped to an entity kind
// ("order" or "reservation").
type Conn struct {
	kind   string
	socket Socket
	logger *zap.Logger

	mu      sync.Mutex
	state   ConnState
	onState func(ConnState)
	onFrame func(Frame)
	closed  bool
}

// Connect dials the gateway and authenticates. With an empty token the
// gateway serves public entities only; a rejected token surfaces as the
// unauthorized state through onState.
func Connect(ctx context.Context, dial Dialer, url, kind, token string, logger *zap.Logger, onFrame func(Frame), onState func(ConnState)) (*Conn, error) {
	c := &Conn{kind: kind, logger: logger, onFrame: onFrame, onState: onState, state: StateConnecting}
	c.notify(StateConnecting)

	socket, err := dial(ctx, url, nil)
	if err != nil {
		c.notify(StateError)
		return nil, err
	}
	c.socket = socket

	if strings.TrimSpace(token) != "" {
		if err := socket.WriteJSON(Frame{Event: "auth", Token: token}); err != nil {
			_ = socket.Close()
			c.notify(StateError)
			return nil, err
		}
	}

	c.notify(StateConnected)
	go c.readLoop()
	return c, nil
}

func (c *Conn) notify(state ConnState) {
	c.mu.Lock()
	c.state = state
	handler := c.onState
	c.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) readLoop() {
	for {
		var frame Frame
		if err := c.socket.ReadJSON(&frame); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				if c.logger != nil {
					c.logger.Debug("realtime read ended", zap.Error(err))
				}
				c.notify(StateDisconnected)
			}
			return
		}

		if frame.Event == "auth:error" {
			c.notify(StateUnauthorized)
			continue
		}
		if c.onFrame != nil {
			c.onFrame(frame)
		}
	}
}

func (c *Conn) Subscribe(id string) error {
	return c.socket.WriteJSON(Frame{Event: c.kind + ":subscribe", ID: id})
}

// Unsubscribe is best-effort; a write failure on teardown is not actionable.
func (c *Conn) Unsubscribe(id string) {
	_ = c.socket.WriteJSON(Frame{Event: c.kind + ":unsubscribe", ID: id})
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	_ = c.socket.Close()
	c.notify(StateDisconnected)
}
