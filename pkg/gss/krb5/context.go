package krb5

import (
	"errors"
	"fmt"

	"github.com/jcmturner/gokrb5/v8/crypto"
	"github.com/jcmturner/gokrb5/v8/gssapi"
	"github.com/jcmturner/gokrb5/v8/iana/flags"
	"github.com/jcmturner/gokrb5/v8/iana/keyusage"
	"github.com/jcmturner/gokrb5/v8/messages"
	"github.com/jcmturner/gokrb5/v8/spnego"
	"github.com/jcmturner/gokrb5/v8/types"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// ErrAPRepMismatch is returned when the AP-REP does not echo the
// authenticator timestamp.
var ErrAPRepMismatch = errors.New("krb5: AP-REP does not match authenticator")

var (
	contextFlags = []int{gssapi.ContextFlagMutual, gssapi.ContextFlagConf, gssapi.ContextFlagInteg}
	apOptions    = []int{flags.APOptionMutualRequired}
)

// Context is a Kerberos 5 initiator context.
type Context struct {
	provider *Provider
	target   string

	sessionKey    types.EncryptionKey
	authenticator types.Authenticator
	sent          bool

	prot        *cfx
	established bool
	disposed    bool
}

// Step sends the AP-REQ on the first call and verifies the AP-REP on the
// second.
func (c *Context) Step(input []byte) ([]byte, error) {
	switch {
	case c.disposed:
		return nil, gss.ErrDisposed
	case c.established:
		return nil, gss.ErrAlreadyEstablished
	case !c.sent:
		return c.initiate()
	default:
		return nil, c.complete(input)
	}
}

func (c *Context) initiate() ([]byte, error) {
	cl := c.provider.cl
	tkt, key, err := cl.GetServiceTicket(c.target)
	if err != nil {
		return nil, fmt.Errorf("krb5: service ticket for %s: %w", c.target, err)
	}
	if !supportedEnctype(key.KeyType) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEnctype, key.KeyType)
	}
	c.provider.debug("service ticket acquired", "target", c.target, "enctype", key.KeyType)

	tok, err := spnego.NewKRB5TokenAPREQ(cl, tkt, key, contextFlags, apOptions)
	if err != nil {
		return nil, fmt.Errorf("krb5: build AP-REQ: %w", err)
	}

	// The authenticator carries the initiator's starting sequence number
	// and the timestamp the acceptor must echo.
	plain, err := crypto.DecryptEncPart(tok.APReq.EncryptedAuthenticator, key, keyusage.AP_REQ_AUTHENTICATOR)
	if err != nil {
		return nil, fmt.Errorf("krb5: read authenticator: %w", err)
	}
	var auth types.Authenticator
	if err := auth.Unmarshal(plain); err != nil {
		return nil, fmt.Errorf("krb5: read authenticator: %w", err)
	}

	out, err := tok.Marshal()
	if err != nil {
		return nil, fmt.Errorf("krb5: marshal AP-REQ: %w", err)
	}
	c.sessionKey = key
	c.authenticator = auth
	c.sent = true
	return out, nil
}

func (c *Context) complete(input []byte) error {
	var tok spnego.KRB5Token
	if err := tok.Unmarshal(input); err != nil {
		return fmt.Errorf("%w: %w", gss.ErrDefectiveToken, err)
	}
	if tok.IsKRBError() {
		return fmt.Errorf("krb5: acceptor rejected context: %s", tok.KRBError.Error())
	}
	if !tok.IsAPRep() {
		return fmt.Errorf("%w: expected AP-REP", gss.ErrDefectiveToken)
	}

	plain, err := crypto.DecryptEncPart(tok.APRep.EncPart, c.sessionKey, keyusage.AP_REP_ENCPART)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAPRepMismatch, err)
	}
	var part messages.EncAPRepPart
	if err := part.Unmarshal(plain); err != nil {
		return fmt.Errorf("%w: %w", gss.ErrDefectiveToken, err)
	}
	if !part.CTime.Equal(c.authenticator.CTime) || part.Cusec != c.authenticator.Cusec {
		return ErrAPRepMismatch
	}

	key, subkey := c.sessionKey, false
	if len(part.Subkey.KeyValue) > 0 {
		key, subkey = part.Subkey, true
	}
	prot, err := newCFX(key, true, subkey, uint64(c.authenticator.SeqNumber), uint64(part.SequenceNumber))
	if err != nil {
		return err
	}
	c.prot = prot
	c.established = true
	c.provider.debug("security context established", "target", c.target, "acceptor_subkey", subkey)
	return nil
}

// IsEstablished reports whether the AP-REP has been verified.
func (c *Context) IsEstablished() bool { return c.established }

// MutualAuthenticated is true once established; the AP-REP is the
// acceptor's proof of identity.
func (c *Context) MutualAuthenticated() bool { return c.established }

// LocalName returns the client principal.
func (c *Context) LocalName() string { return c.provider.Principal() }

// PeerName returns the service principal.
func (c *Context) PeerName() string { return c.target }

func (c *Context) ready(prop *gss.MessageProp) error {
	if c.disposed {
		return gss.ErrDisposed
	}
	if !c.established {
		return gss.ErrNotEstablished
	}
	if prop != nil && prop.QOP != gss.DefaultQOP {
		return fmt.Errorf("%w: %d", gss.ErrBadQOP, prop.QOP)
	}
	return nil
}

// Wrap produces an RFC 4121 wrap token, sealed unless prop asks for
// integrity only.
func (c *Context) Wrap(plaintext []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := c.ready(prop); err != nil {
		return nil, err
	}
	return c.prot.wrap(plaintext, prop == nil || prop.Confidential)
}

// Unwrap verifies a wrap token from the acceptor and returns its plaintext.
func (c *Context) Unwrap(token []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := c.ready(nil); err != nil {
		return nil, err
	}
	plain, sealed, err := c.prot.unwrap(token)
	if err != nil {
		return nil, err
	}
	if prop != nil {
		prop.QOP = gss.DefaultQOP
		prop.Confidential = sealed
	}
	return plain, nil
}

// GetMIC produces an RFC 4121 MIC token over message.
func (c *Context) GetMIC(message []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := c.ready(prop); err != nil {
		return nil, err
	}
	return c.prot.getMIC(message)
}

// VerifyMIC checks an acceptor MIC token against message.
func (c *Context) VerifyMIC(tag, message []byte, prop *gss.MessageProp) error {
	if err := c.ready(prop); err != nil {
		return err
	}
	return c.prot.verifyMIC(tag, message)
}

// Dispose releases the context keys. An acceptor subkey is wiped; the
// session key belongs to the client's ticket cache and is only dropped.
func (c *Context) Dispose() error {
	if c.disposed {
		return nil
	}
	c.disposed = true
	if c.prot != nil && c.prot.acceptorSubkey {
		clear(c.prot.key.KeyValue)
	}
	c.prot = nil
	c.sessionKey = types.EncryptionKey{}
	return nil
}

var _ gss.Context = (*Context)(nil)
