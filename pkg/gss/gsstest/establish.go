package gsstest

import (
	"errors"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// ErrTooManyRounds is returned by Establish when the contexts keep
// exchanging tokens past the round limit.
var ErrTooManyRounds = errors.New("gsstest: handshake did not converge")

const maxEstablishRounds = 16

// Establish runs a handshake between an initiator and an acceptor in
// memory. It returns the number of tokens the initiator produced.
func Establish(initiator, acceptor gss.Context) (int, error) {
	var (
		input  []byte
		tokens int
	)
	for range maxEstablishRounds {
		out, err := initiator.Step(input)
		if err != nil {
			return tokens, err
		}
		if len(out) > 0 {
			tokens++
			reply, err := acceptor.Step(out)
			if err != nil {
				return tokens, err
			}
			input = reply
		}
		if initiator.IsEstablished() {
			return tokens, nil
		}
	}
	return tokens, ErrTooManyRounds
}

// Pair creates an initiator for the mechanism's acceptor name, an
// acceptor, and establishes the context between them.
func (m *Mechanism) Pair() (gss.Context, gss.Context, error) {
	init, err := m.NewContext(m.opts.AcceptorName)
	if err != nil {
		return nil, nil, err
	}
	acc := m.NewAcceptor()
	if _, err := Establish(init, acc); err != nil {
		return nil, nil, err
	}
	return init, acc, nil
}
