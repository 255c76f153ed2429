package gsstest

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// Default principal names.
const (
	DefaultInitiatorName = "user@TEST.REALM"
	DefaultAcceptorName  = "host/localhost"
)

const keySize = 32

// Options configures the handshake shape.
type Options struct {
	// InitiatorName is the client principal (default DefaultInitiatorName).
	InitiatorName string

	// AcceptorName is the only target acceptors accept (default DefaultAcceptorName).
	AcceptorName string

	// Legs is the number of initiator tokens before the acceptor finishes (default 1).
	Legs int

	// Unilateral makes initiators skip mutual authentication: they report
	// established after their last token and the acceptor sends no proof.
	Unilateral bool

	// ConfirmLeg makes the initiator answer the acceptor's proof with a
	// confirmation token, emitted in the same Step that establishes it.
	ConfirmLeg bool

	// ForgeProof makes acceptors send a proof the initiator will reject.
	ForgeProof bool
}

// Mechanism creates matching initiator and acceptor contexts.
type Mechanism struct {
	opts       Options
	acceptPriv []byte
	acceptPub  []byte
}

// NewMechanism creates a mechanism with a fresh acceptor key.
func NewMechanism(opts Options) (*Mechanism, error) {
	if opts.InitiatorName == "" {
		opts.InitiatorName = DefaultInitiatorName
	}
	if opts.AcceptorName == "" {
		opts.AcceptorName = DefaultAcceptorName
	}
	if opts.Legs <= 0 {
		opts.Legs = 1
	}

	priv := make([]byte, keySize)
	if _, err := rand.Read(priv); err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	return &Mechanism{opts: opts, acceptPriv: priv, acceptPub: pub}, nil
}

// MustNewMechanism is NewMechanism for tests; it panics on failure.
func MustNewMechanism(opts Options) *Mechanism {
	m, err := NewMechanism(opts)
	if err != nil {
		panic(err)
	}
	return m
}

// Options returns the effective options.
func (m *Mechanism) Options() Options {
	return m.opts
}

// NewContext creates an initiator context for target.
func (m *Mechanism) NewContext(target string) (gss.Context, error) {
	return &initiator{mech: m, target: target}, nil
}

// NewAcceptor creates an acceptor context.
func (m *Mechanism) NewAcceptor() gss.Context {
	return &acceptor{mech: m}
}

var _ gss.Provider = (*Mechanism)(nil)

// handshakeToken is the CBOR body of every context token.
type handshakeToken struct {
	Leg       int    `cbor:"1,keyasint"`
	Final     bool   `cbor:"2,keyasint,omitempty"`
	Target    string `cbor:"3,keyasint,omitempty"`
	Initiator string `cbor:"4,keyasint,omitempty"`
	PublicKey []byte `cbor:"5,keyasint,omitempty"`
	Mutual    bool   `cbor:"6,keyasint,omitempty"`
	Proof     []byte `cbor:"7,keyasint,omitempty"`
}

func encodeToken(t handshakeToken) ([]byte, error) {
	return cbor.Marshal(t)
}

func decodeToken(b []byte) (handshakeToken, error) {
	var t handshakeToken
	if err := cbor.Unmarshal(b, &t); err != nil {
		return handshakeToken{}, fmt.Errorf("%w: %w", gss.ErrDefectiveToken, err)
	}
	return t, nil
}

// sessionKeys are the per-direction keys derived from the shared secret.
type sessionKeys struct {
	initiatorSeal []byte
	acceptorSeal  []byte
	initiatorSign []byte
	acceptorSign  []byte
}

func deriveKeys(shared, ephemeralPub, acceptorPub []byte) (*sessionKeys, error) {
	salt := append(append([]byte{}, ephemeralPub...), acceptorPub...)
	kdf := hkdf.New(sha256.New, shared, salt, []byte("remctl gsstest v1"))

	keys := &sessionKeys{
		initiatorSeal: make([]byte, keySize),
		acceptorSeal:  make([]byte, keySize),
		initiatorSign: make([]byte, keySize),
		acceptorSign:  make([]byte, keySize),
	}
	for _, k := range [][]byte{keys.initiatorSeal, keys.acceptorSeal, keys.initiatorSign, keys.acceptorSign} {
		if _, err := io.ReadFull(kdf, k); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (k *sessionKeys) wipe() {
	for _, b := range [][]byte{k.initiatorSeal, k.acceptorSeal, k.initiatorSign, k.acceptorSign} {
		clear(b)
	}
}
