package transport

import (
	"context"
	"errors"
)

// Transport errors.
var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrSendFailed       = errors.New("send failed")
	ErrAlreadyOpen      = errors.New("connector already open")
)

// Connector moves raw message text between the session and a server.
// The session owns its connector exclusively; no other component may
// send on it or close it.
type Connector interface {
	// Open establishes the underlying connection. Failures wrap
	// ErrConnectionFailed.
	Open(ctx context.Context) error

	// Send transmits one outbound frame of message text. Failures
	// wrap ErrSendFailed.
	Send(ctx context.Context, data []byte) error

	// Inbound returns the channel of received frames. The channel
	// closes when the connection drops or Close is called; a fresh
	// Open yields a fresh channel.
	Inbound() <-chan []byte

	// Close tears the connection down. Closing a connector that is
	// not open is a no-op.
	Close(ctx context.Context) error
}

// Compile-time interface satisfaction checks.
var (
	_ Connector = (*Websocket)(nil)
	_ Connector = (*Pipe)(nil)
)
