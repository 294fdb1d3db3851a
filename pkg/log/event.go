package log

import (
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Event represents a protocol trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies one connection session (UUID).
	// A reconnect starts a new session with a fresh ID.
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// ServerAddr is the server address the session targets.
	ServerAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceIndex identifies the device the event concerns, when any.
	DeviceIndex *uint32 `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`  // Transport layer
	Message     *MessageEvent     `cbor:"9,keyasint,omitempty"`  // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session state
	Dispatch    *DispatchEvent    `cbor:"11,keyasint,omitempty"` // Subscriber fan-out
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the connector layer (raw frame text).
	LayerTransport Layer = 0
	// LayerWire is the message encoding layer (decoded JSON).
	LayerWire Layer = 1
	// LayerSession is the client session layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (request/reply/push).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryDispatch indicates event fan-out to subscribers.
	CategoryDispatch Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame text at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame text (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded protocol message at the wire layer.
// Kind stores the wire name of the message so traces remain readable
// regardless of tooling version.
type MessageEvent struct {
	// Kind is the wire name of the message ("Ok", "DeviceAdded", ...).
	Kind string `cbor:"1,keyasint"`

	// MessageID correlates request/reply pairs (0 for pushes).
	MessageID uint32 `cbor:"2,keyasint"`

	// For Error messages: the error code.
	ErrorCode *wire.ErrorCode `cbor:"3,keyasint,omitempty"`

	// RoundTrip is the duration from request send to reply receipt
	// (replies only). Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 0
	// StateEntityScanning indicates a scanning state change.
	StateEntityScanning StateEntity = 1
	// StateEntityDevice indicates a device arrival or removal.
	StateEntityDevice StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityScanning:
		return "SCANNING"
	case StateEntityDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// DispatchEvent captures event fan-out to subscribers.
type DispatchEvent struct {
	// EventType is the name of the dispatched event.
	EventType string `cbor:"1,keyasint"`

	// Subscribers is the number of handlers the event was delivered to.
	Subscribers int `cbor:"2,keyasint"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the server error code (if applicable).
	Code *wire.ErrorCode `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
