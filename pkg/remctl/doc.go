// Package remctl implements the client side of the remctl protocol,
// version 1.
//
// One operation runs over one connection with one security context:
//
//	Handshake     NOOP|CONTEXT_NEXT, then CONTEXT tokens until the
//	              context is established and mutually authenticated
//	SendCommand   DATA|SEND_MIC carrying the wrapped request, answered
//	              by a MIC over the request plaintext
//	ReadResponse  DATA carrying the wrapped response, answered by a MIC
//	              over the response plaintext
//
// Session drives those phases over any transport.TokenReadWriter and
// gss.Context. Client adds connection setup, principal naming, timeouts
// and cleanup around a Session.
//
// Errors carry one of the kinds defined in package wire, so callers can
// use errors.Is to tell I/O failures from protocol violations,
// authentication failures and integrity failures.
package remctl
