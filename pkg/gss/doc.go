// Package gss defines the security-context capability the remctl engine
// drives.
//
// A Context is created by a Provider for one target principal, stepped
// until it reports established, and then used to wrap, unwrap, sign and
// verify messages. The engine never inspects tokens produced by the
// context; all cryptography belongs to the mechanism.
//
// Implementations:
//   - krb5: Kerberos 5 (RFC 4121) on top of gokrb5
//   - gsstest: an in-process mechanism for tests, with a matching acceptor
package gss
