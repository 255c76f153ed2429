// Package gsstest provides an in-process security mechanism for testing
// code that drives a gss.Context.
//
// A Mechanism plays the role of the KDC: it owns the acceptor's long-term
// X25519 key and hands initiators the public half. Initiators and
// acceptors created from the same Mechanism can establish a context with
// each other over any transport, then wrap (XChaCha20-Poly1305) and sign
// (keyed BLAKE2b) messages.
//
// Options shape the handshake so callers can exercise multi-leg
// exchanges, unilateral authentication, three-way confirmation and forged
// acceptor proofs.
package gsstest
