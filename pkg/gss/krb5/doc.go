// Package krb5 implements the gss.Provider capability with Kerberos 5
// (RFC 4121) on top of the pure-Go gokrb5 library.
//
// A Provider holds a logged-in Kerberos client obtained from a keytab or a
// credential cache. Each Context it creates sends one AP-REQ requesting
// mutual authentication, confidentiality and integrity, and completes when
// the acceptor's AP-REP has been verified. Per-message tokens use the
// RFC 4121 "CFX" formats, so only enctypes with a simplified profile
// (the AES families) are supported.
package krb5
