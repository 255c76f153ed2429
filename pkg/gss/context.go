package gss

import (
	"encoding/asn1"
	"errors"
	"strings"
)

// KerberosV5 is the Kerberos 5 GSS-API mechanism OID (RFC 1964).
var KerberosV5 = asn1.ObjectIdentifier{1, 2, 840, 113554, 1, 2, 2}

// DefaultQOP requests the mechanism's default quality of protection.
const DefaultQOP = 0

// Errors returned by Context implementations.
var (
	// ErrBadMIC indicates a MIC or wrap token that failed verification.
	ErrBadMIC = errors.New("gss: message integrity check failed")

	// ErrNotEstablished indicates a message operation before establishment.
	ErrNotEstablished = errors.New("gss: context not established")

	// ErrAlreadyEstablished indicates Step after establishment.
	ErrAlreadyEstablished = errors.New("gss: context already established")

	// ErrDisposed indicates use of a disposed context.
	ErrDisposed = errors.New("gss: context disposed")

	// ErrBadQOP indicates an unsupported quality of protection.
	ErrBadQOP = errors.New("gss: unsupported quality of protection")

	// ErrDefectiveToken indicates a token that could not be parsed.
	ErrDefectiveToken = errors.New("gss: defective token")
)

// MessageProp is the per-message protection setting. Unwrap updates it
// with the protection actually applied by the peer.
type MessageProp struct {
	// QOP selects the protection algorithm; DefaultQOP lets the mechanism choose.
	QOP int

	// Confidential requests (Wrap) or reports (Unwrap) encryption.
	Confidential bool
}

// ResetQOP restores the default quality of protection.
func (p *MessageProp) ResetQOP() {
	p.QOP = DefaultQOP
}

// Context is an initiator or acceptor security context.
//
// States: uninitialized, establishing (after the first Step), established,
// disposed. Contexts are not safe for concurrent use.
type Context interface {
	// Step advances establishment. The input is ignored on the first call.
	// A nil or empty output means nothing needs to be sent this round.
	Step(input []byte) (output []byte, err error)

	// IsEstablished reports whether establishment is complete.
	IsEstablished() bool

	// MutualAuthenticated reports whether the peer proved its identity.
	MutualAuthenticated() bool

	// Wrap protects plaintext for the peer.
	Wrap(plaintext []byte, prop *MessageProp) ([]byte, error)

	// Unwrap verifies and, if sealed, decrypts a wrap token.
	Unwrap(token []byte, prop *MessageProp) ([]byte, error)

	// GetMIC computes a message integrity code over message.
	GetMIC(message []byte, prop *MessageProp) ([]byte, error)

	// VerifyMIC checks tag against message. A mismatch wraps ErrBadMIC.
	VerifyMIC(tag, message []byte, prop *MessageProp) error

	// LocalName is the local principal.
	LocalName() string

	// PeerName is the peer principal.
	PeerName() string

	// Dispose releases the context. It is idempotent.
	Dispose() error
}

// Provider creates initiator contexts requesting mutual authentication,
// confidentiality and integrity.
type Provider interface {
	NewContext(target string) (Context, error)
}

// ServicePrincipal returns the default remctl service principal for a
// host: "host/" followed by the lower-cased canonical name.
func ServicePrincipal(canonicalHost string) string {
	return "host/" + strings.ToLower(strings.TrimSuffix(canonicalHost, "."))
}
