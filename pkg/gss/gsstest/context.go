package gsstest

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// Handshake failures.
var (
	ErrUnknownTarget = errors.New("gsstest: unknown target")
	ErrBadProof      = errors.New("gsstest: acceptor proof did not verify")
	ErrBadConfirm    = errors.New("gsstest: initiator confirmation did not verify")
	ErrUnexpectedLeg = errors.New("gsstest: unexpected handshake leg")
)

const (
	proofLabel   = "proof"
	confirmLabel = "confirm"
)

func labeled(label string, key []byte) []byte {
	return append([]byte(label), key...)
}

type initiator struct {
	keyedState
	mech   *Mechanism
	target string

	ephemeralPub []byte
	sent         int
	mutual       bool
}

func (c *initiator) Step(input []byte) ([]byte, error) {
	if c.disposed {
		return nil, gss.ErrDisposed
	}
	if c.established {
		return nil, gss.ErrAlreadyEstablished
	}
	opts := c.mech.opts

	if c.sent == 0 {
		if err := c.start(); err != nil {
			return nil, err
		}
		return c.nextLeg(opts)
	}

	in, err := decodeToken(input)
	if err != nil {
		return nil, err
	}
	if c.sent < opts.Legs {
		if in.Leg != c.sent || len(in.Proof) != 0 {
			return nil, fmt.Errorf("%w: got %d, want ack %d", ErrUnexpectedLeg, in.Leg, c.sent)
		}
		return c.nextLeg(opts)
	}

	if in.Leg != opts.Legs {
		return nil, fmt.Errorf("%w: got %d, want proof %d", ErrUnexpectedLeg, in.Leg, opts.Legs)
	}
	_, acceptorSign := c.recvKeys()
	if !equalMAC(in.Proof, mac(acceptorSign, labeled(proofLabel, c.ephemeralPub))) {
		return nil, ErrBadProof
	}
	c.established = true
	c.mutual = true

	if !opts.ConfirmLeg {
		return nil, nil
	}
	_, initiatorSign := c.sendKeys()
	return encodeToken(handshakeToken{
		Leg:   opts.Legs + 1,
		Proof: mac(initiatorSign, labeled(confirmLabel, c.ephemeralPub)),
	})
}

func (c *initiator) start() error {
	priv := make([]byte, keySize)
	if _, err := rand.Read(priv); err != nil {
		return err
	}
	defer clear(priv)

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return err
	}
	shared, err := curve25519.X25519(priv, c.mech.acceptPub)
	if err != nil {
		return err
	}
	keys, err := deriveKeys(shared, pub, c.mech.acceptPub)
	if err != nil {
		return err
	}
	c.keys = keys
	c.isInitiator = true
	c.ephemeralPub = pub
	return nil
}

func (c *initiator) nextLeg(opts Options) ([]byte, error) {
	c.sent++
	t := handshakeToken{Leg: c.sent, Final: c.sent == opts.Legs}
	if c.sent == 1 {
		t.Target = c.target
		t.Initiator = opts.InitiatorName
		t.PublicKey = c.ephemeralPub
		t.Mutual = !opts.Unilateral
	}
	out, err := encodeToken(t)
	if err != nil {
		return nil, err
	}
	if t.Final && opts.Unilateral {
		c.established = true
	}
	return out, nil
}

func (c *initiator) IsEstablished() bool       { return c.established }
func (c *initiator) MutualAuthenticated() bool { return c.mutual }
func (c *initiator) LocalName() string         { return c.mech.opts.InitiatorName }
func (c *initiator) PeerName() string          { return c.target }
func (c *initiator) Dispose() error            { return c.dispose() }

func (c *initiator) Wrap(plaintext []byte, prop *gss.MessageProp) ([]byte, error) {
	return c.wrap(plaintext, prop)
}

func (c *initiator) Unwrap(token []byte, prop *gss.MessageProp) ([]byte, error) {
	return c.unwrap(token, prop)
}

func (c *initiator) GetMIC(message []byte, prop *gss.MessageProp) ([]byte, error) {
	return c.getMIC(message, prop)
}

func (c *initiator) VerifyMIC(tag, message []byte, prop *gss.MessageProp) error {
	return c.verifyMIC(tag, message, prop)
}

type acceptor struct {
	keyedState
	mech *Mechanism

	peer         string
	ephemeralPub []byte
	received     int
	mutual       bool
	awaitConfirm bool
}

func (a *acceptor) Step(input []byte) ([]byte, error) {
	if a.disposed {
		return nil, gss.ErrDisposed
	}
	if a.established {
		return nil, gss.ErrAlreadyEstablished
	}
	opts := a.mech.opts

	in, err := decodeToken(input)
	if err != nil {
		return nil, err
	}

	if a.awaitConfirm {
		if in.Leg != opts.Legs+1 {
			return nil, fmt.Errorf("%w: got %d, want confirmation", ErrUnexpectedLeg, in.Leg)
		}
		_, initiatorSign := a.recvKeys()
		if !equalMAC(in.Proof, mac(initiatorSign, labeled(confirmLabel, a.ephemeralPub))) {
			return nil, ErrBadConfirm
		}
		a.established = true
		return nil, nil
	}

	if in.Leg != a.received+1 {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedLeg, in.Leg, a.received+1)
	}
	if a.received == 0 {
		if err := a.accept(in); err != nil {
			return nil, err
		}
	}
	a.received++

	if !in.Final {
		return encodeToken(handshakeToken{Leg: a.received})
	}
	if !a.mutual {
		a.established = true
		return nil, nil
	}

	_, acceptorSign := a.sendKeys()
	proof := mac(acceptorSign, labeled(proofLabel, a.ephemeralPub))
	if opts.ForgeProof {
		proof[0] ^= 0xFF
	}
	if opts.ConfirmLeg {
		a.awaitConfirm = true
	} else {
		a.established = true
	}
	return encodeToken(handshakeToken{Leg: a.received, Proof: proof})
}

func (a *acceptor) accept(in handshakeToken) error {
	if in.Target != a.mech.opts.AcceptorName {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, in.Target)
	}
	if len(in.PublicKey) != keySize {
		return fmt.Errorf("%w: bad public key", gss.ErrDefectiveToken)
	}
	shared, err := curve25519.X25519(a.mech.acceptPriv, in.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", gss.ErrDefectiveToken, err)
	}
	keys, err := deriveKeys(shared, in.PublicKey, a.mech.acceptPub)
	if err != nil {
		return err
	}
	a.keys = keys
	a.peer = in.Initiator
	a.ephemeralPub = in.PublicKey
	a.mutual = in.Mutual
	return nil
}

func (a *acceptor) IsEstablished() bool       { return a.established }
func (a *acceptor) MutualAuthenticated() bool { return a.established && a.mutual }
func (a *acceptor) LocalName() string         { return a.mech.opts.AcceptorName }
func (a *acceptor) PeerName() string          { return a.peer }
func (a *acceptor) Dispose() error            { return a.dispose() }

func (a *acceptor) Wrap(plaintext []byte, prop *gss.MessageProp) ([]byte, error) {
	return a.wrap(plaintext, prop)
}

func (a *acceptor) Unwrap(token []byte, prop *gss.MessageProp) ([]byte, error) {
	return a.unwrap(token, prop)
}

func (a *acceptor) GetMIC(message []byte, prop *gss.MessageProp) ([]byte, error) {
	return a.getMIC(message, prop)
}

func (a *acceptor) VerifyMIC(tag, message []byte, prop *gss.MessageProp) error {
	return a.verifyMIC(tag, message, prop)
}

var (
	_ gss.Context = (*initiator)(nil)
	_ gss.Context = (*acceptor)(nil)
)
