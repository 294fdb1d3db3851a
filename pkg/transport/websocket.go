package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Websocket defaults.
const (
	// DefaultHandshakeTimeout bounds the dial when the caller's
	// context carries no deadline.
	DefaultHandshakeTimeout = 30 * time.Second

	// DefaultWriteTimeout bounds each send when the caller's context
	// carries no deadline.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultMaxMessageSize caps inbound frames (1 MiB).
	DefaultMaxMessageSize = 1 << 20
)

// WebsocketConfig configures a websocket connector.
type WebsocketConfig struct {
	// URL is the server address, e.g. ws://127.0.0.1:12345.
	URL string

	// HandshakeTimeout bounds the dial (default: 30s).
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each send (default: 10s).
	WriteTimeout time.Duration

	// MaxMessageSize caps inbound frames in bytes (default: 1 MiB).
	MaxMessageSize int64
}

// Websocket is a Connector over a websocket connection, carrying one
// protocol frame per text message. A dropped or closed connector may
// be opened again; reconnection relies on this.
type Websocket struct {
	config WebsocketConfig

	mu      sync.Mutex
	conn    *websocket.Conn
	inbound chan []byte
	done    chan struct{}

	writeMu sync.Mutex
}

// NewWebsocket creates a websocket connector for the given server.
func NewWebsocket(config WebsocketConfig) *Websocket {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	return &Websocket{config: config}
}

// URL returns the server address the connector dials.
func (w *Websocket) URL() string {
	return w.config.URL
}

// Open dials the server and starts the read pump.
func (w *Websocket) Open(ctx context.Context) error {
	w.mu.Lock()
	if w.conn != nil {
		w.mu.Unlock()
		return ErrAlreadyOpen
	}
	w.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.HandshakeTimeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(ctx, w.config.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	conn.SetReadLimit(w.config.MaxMessageSize)

	inbound := make(chan []byte)
	done := make(chan struct{})

	w.mu.Lock()
	if w.conn != nil {
		w.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "duplicate open")
		return ErrAlreadyOpen
	}
	w.conn = conn
	w.inbound = inbound
	w.done = done
	w.mu.Unlock()

	go w.readPump(conn, inbound, done)
	return nil
}

// Send transmits one frame as a websocket text message.
func (w *Websocket) Send(ctx context.Context, data []byte) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("%w: connector is not open", ErrSendFailed)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.WriteTimeout)
		defer cancel()
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// Inbound returns the channel fed by the current connection's read
// pump, or nil if the connector was never opened.
func (w *Websocket) Inbound() <-chan []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inbound
}

// Close performs the websocket close handshake and stops the read
// pump.
func (w *Websocket) Close(ctx context.Context) error {
	w.mu.Lock()
	conn := w.conn
	done := w.done
	w.conn = nil
	w.done = nil
	w.mu.Unlock()

	if conn == nil {
		return nil
	}
	close(done)
	return conn.Close(websocket.StatusNormalClosure, "")
}

// readPump feeds inbound until the connection drops. Closing the
// channel is the drop signal the session watches for, whether the
// server went away or Close was called locally.
func (w *Websocket) readPump(conn *websocket.Conn, inbound chan []byte, done chan struct{}) {
	defer func() {
		w.mu.Lock()
		if w.conn == conn {
			w.conn = nil
		}
		w.mu.Unlock()
		close(inbound)
	}()

	for {
		typ, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		select {
		case inbound <- data:
		case <-done:
			return
		}
	}
}
