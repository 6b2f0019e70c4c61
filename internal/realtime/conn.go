package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned by Emit after the connection has been closed.
var ErrConnClosed = errors.New("connection closed")

// writeTimeout bounds a single websocket write.
const writeTimeout = 10 * time.Second

// Conn wraps a websocket connection with the JSON event framing of the
// realtime contract. Writes are serialized with a mutex because the
// underlying connection supports only one concurrent writer.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ Emitter = (*Conn)(nil)

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		logger: logger.With("component", "conn"),
	}
}

// Emit sends one event frame to the client.
func (c *Conn) Emit(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	frame := Frame{Event: event, Data: payload}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.ws.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", event, err)
	}
	return nil
}

// ReadFrame blocks until the next inbound frame arrives or the connection
// drops.
func (c *Conn) ReadFrame() (Frame, error) {
	var frame Frame
	if err := c.ws.ReadJSON(&frame); err != nil {
		return Frame{}, err
	}
	return frame, nil
}

// Close shuts the connection down. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if err := c.ws.Close(); err != nil {
		c.logger.Debug("failed to close websocket", "error", err)
	}
}
