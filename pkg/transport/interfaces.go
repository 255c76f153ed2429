package transport

import (
	"context"

	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// TokenReadWriter provides framed token I/O.
// Implemented by Framer and ClientConn.
type TokenReadWriter interface {
	// ReadToken reads exactly one token.
	ReadToken() (wire.Flag, []byte, error)

	// WriteToken writes and flushes one token.
	WriteToken(flag wire.Flag, payload []byte) error
}

// Resolver maps a host name to the canonical name used in the default
// server principal.
type Resolver interface {
	CanonicalHost(ctx context.Context, host string) (string, error)
}

var (
	_ TokenReadWriter = (*Framer)(nil)
	_ TokenReadWriter = (*ClientConn)(nil)
	_ Resolver        = NetResolver{}
	_ Resolver        = StaticResolver{}
)
