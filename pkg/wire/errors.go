package wire

import "errors"

// Error kinds shared by every layer of the client. Failures are wrapped
// so that both the kind and the underlying cause match errors.Is.
var (
	// ErrProtocolIO indicates malformed or truncated token framing, or a
	// connection that closed while a token was expected.
	ErrProtocolIO = errors.New("remctl: protocol i/o error")

	// ErrProtocol indicates a token or message that violates the protocol,
	// such as an unexpected token type.
	ErrProtocol = errors.New("remctl: protocol error")

	// ErrMutualAuthentication indicates a security context that completed
	// without authenticating the server to the client.
	ErrMutualAuthentication = errors.New("remctl: no mutual authentication")

	// ErrIntegrity indicates a MIC that failed verification.
	ErrIntegrity = errors.New("remctl: integrity check failed")

	// ErrSecurityContext indicates the security-context primitive rejected
	// an operation (bad credentials, mechanism failure).
	ErrSecurityContext = errors.New("remctl: security context failure")
)
