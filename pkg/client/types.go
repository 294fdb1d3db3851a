package client

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/connection"
	"github.com/Siege-Wizard/buttplug-go/pkg/interaction"
	"github.com/Siege-Wizard/buttplug-go/pkg/log"
	"github.com/Siege-Wizard/buttplug-go/pkg/version"
)

// Session errors.
var (
	ErrNotConnected        = errors.New("not connected")
	ErrAlreadyConnected    = errors.New("already connected")
	ErrConnectionLost      = errors.New("connection lost")
	ErrHandshakeFailed     = errors.New("handshake failed")
	ErrIncompatibleVersion = errors.New("incompatible protocol version")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// SessionState represents the lifecycle state of the session.
type SessionState uint8

const (
	// StateDisconnected means no connection exists.
	StateDisconnected SessionState = iota

	// StateConnecting means the transport is being established.
	StateConnecting

	// StateHandshaking means the transport is up and the protocol
	// handshake is in progress.
	StateHandshaking

	// StateConnected means the session is established and requests
	// may be sent.
	StateConnected

	// StateDisconnecting means a local disconnect is in progress.
	StateDisconnecting
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnecting:
		return "DISCONNECTING"
	default:
		return "UNKNOWN"
	}
}

// ClientInfo is the session's view of the server, populated at the end
// of a successful handshake and cleared on disconnect.
type ClientInfo struct {
	// ServerName is the server's self-reported name.
	ServerName string

	// ServerVersion is the server's build version string, sent by
	// servers up to schema v2. Empty when the server did not report
	// one.
	ServerVersion string

	// MessageVersion is the schema version the conversation uses.
	// Every message sent or received is encoded at this version.
	MessageVersion version.Spec

	// MaxPingTime is the longest the server tolerates between pings.
	// Zero means the server does not enforce a ping timeout.
	MaxPingTime time.Duration
}

// Config holds client configuration.
type Config struct {
	// ClientName is announced to the server during the handshake.
	ClientName string

	// MaxVersion caps the schema version advertised in the handshake.
	// The conversation runs at the server's version when it is lower.
	MaxVersion version.Spec

	// HandshakeTimeout bounds the handshake exchange, including the
	// initial device list synchronization. Zero disables the bound.
	HandshakeTimeout time.Duration

	// RequestTimeout is the advisory timeout after which an in-flight
	// request with no reply is failed. Zero selects the default.
	RequestTimeout time.Duration

	// Reconnect is the policy applied after unexpected connection
	// loss. The zero value disables automatic reconnection.
	Reconnect connection.Policy

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// Trace receives structured protocol events for every frame,
	// message, state change and dispatch. Nil disables capture.
	Trace log.Logger
}

// DefaultConfig returns a client configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClientName:       "buttplug-go",
		MaxVersion:       version.Latest,
		HandshakeTimeout: 10 * time.Second,
		RequestTimeout:   interaction.DefaultTimeout,
		Reconnect:        connection.DefaultPolicy(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ClientName == "" {
		return errors.New("client name is required")
	}
	if c.MaxVersion > version.Latest {
		return errors.New("max version exceeds the newest supported schema version")
	}
	return nil
}
