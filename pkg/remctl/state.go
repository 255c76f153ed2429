package remctl

import "errors"

// ErrSessionState is returned when Session methods are called out of order
// or after a failure.
var ErrSessionState = errors.New("remctl: session operation out of order")

// HandshakeState is the context-establishment state of a Session.
type HandshakeState uint8

const (
	// StateStart is the state before any token is sent.
	StateStart HandshakeState = iota

	// StateEstablishing indicates context tokens are being exchanged.
	StateEstablishing

	// StateEstablished indicates a mutually authenticated context.
	StateEstablished

	// StateFailed indicates the handshake did not complete.
	StateFailed
)

// String returns a human-readable state name.
func (s HandshakeState) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateEstablishing:
		return "ESTABLISHING"
	case StateEstablished:
		return "ESTABLISHED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// exchangePhase tracks the command exchange after the handshake.
type exchangePhase uint8

const (
	phaseIdle exchangePhase = iota
	phaseCommandSent
	phaseDone
	phaseBroken
)
