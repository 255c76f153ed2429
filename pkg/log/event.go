package log

import (
	"time"

	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// Event is one protocol log record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the client operation (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the token, for token events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Principal is the server principal the context targets.
	Principal string `cbor:"7,keyasint,omitempty"`

	// Exactly one of these is set.
	Token       *TokenEvent       `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates token flow.
type Direction uint8

const (
	// DirectionIn is a token received from the server.
	DirectionIn Direction = 0
	// DirectionOut is a token sent to the server.
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

// Layer indicates which part of the client captured the event.
type Layer uint8

const (
	// LayerTransport is the token framing layer.
	LayerTransport Layer = 0
	// LayerSession is the handshake and exchange layer.
	LayerSession Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryToken is a token read or written.
	CategoryToken Category = 0
	// CategoryState is a session state change.
	CategoryState Category = 1
	// CategoryError is a failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryToken:
		return "TOKEN"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// TokenEvent captures one token at the transport layer.
type TokenEvent struct {
	// Flag is the token flag byte.
	Flag wire.Flag `cbor:"1,keyasint"`

	// Size is the payload length declared on the wire.
	Size int `cbor:"2,keyasint"`

	// Data is the payload, possibly truncated.
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates Data was cut short.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures a handshake or session transition.
type StateChangeEvent struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`

	// Reason for the change, if any.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures a failure.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context describes what was being done ("handshake", "read response").
	Context string `cbor:"3,keyasint,omitempty"`
}
