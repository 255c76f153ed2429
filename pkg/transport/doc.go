// Package transport implements remctl token framing and connection setup.
//
// # Token Framing
//
//	┌──────────┬──────────────────┬──────────────────────┐
//	│ flag (1) │ length (4, BE)   │ payload (length)     │
//	└──────────┴──────────────────┴──────────────────────┘
//
// Writers emit the header and payload and flush before returning. Readers
// block until the declared payload has been read in full, and never read
// past it. Lengths above the configured ceiling are rejected before any
// payload is allocated.
//
// All failures wrap wire.ErrProtocolIO.
//
// # Connections
//
// Client dials one TCP connection per remctl operation (default port
// 4444). The canonical host name, used to derive the default server
// principal, comes from a Resolver.
package transport
