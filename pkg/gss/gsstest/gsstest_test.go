package gsstest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

func TestEstablishMutual(t *testing.T) {
	m := MustNewMechanism(Options{})
	init, err := m.NewContext(DefaultAcceptorName)
	require.NoError(t, err)
	acc := m.NewAcceptor()

	tokens, err := Establish(init, acc)
	require.NoError(t, err)

	assert.Equal(t, 1, tokens)
	assert.True(t, init.IsEstablished())
	assert.True(t, init.MutualAuthenticated())
	assert.True(t, acc.IsEstablished())
	assert.Equal(t, DefaultInitiatorName, acc.PeerName())
	assert.Equal(t, DefaultAcceptorName, init.PeerName())
	assert.Equal(t, DefaultInitiatorName, init.LocalName())
}

func TestEstablishLegs(t *testing.T) {
	for _, legs := range []int{1, 2, 3} {
		m := MustNewMechanism(Options{Legs: legs})
		init, _ := m.NewContext(DefaultAcceptorName)
		acc := m.NewAcceptor()

		tokens, err := Establish(init, acc)
		require.NoError(t, err)
		assert.Equal(t, legs, tokens)
		assert.True(t, init.MutualAuthenticated())
	}
}

func TestEstablishUnilateral(t *testing.T) {
	m := MustNewMechanism(Options{Unilateral: true})
	init, _ := m.NewContext(DefaultAcceptorName)

	out, err := init.Step(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.True(t, init.IsEstablished())
	assert.False(t, init.MutualAuthenticated())

	acc := m.NewAcceptor()
	reply, err := acc.Step(out)
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.True(t, acc.IsEstablished())
}

func TestEstablishConfirmLeg(t *testing.T) {
	m := MustNewMechanism(Options{ConfirmLeg: true})
	init, _ := m.NewContext(DefaultAcceptorName)
	acc := m.NewAcceptor()

	first, err := init.Step(nil)
	require.NoError(t, err)
	proof, err := acc.Step(first)
	require.NoError(t, err)
	assert.False(t, acc.IsEstablished())

	confirm, err := init.Step(proof)
	require.NoError(t, err)
	assert.NotEmpty(t, confirm, "initiator emits a token in the step that establishes it")
	assert.True(t, init.IsEstablished())

	last, err := acc.Step(confirm)
	require.NoError(t, err)
	assert.Empty(t, last)
	assert.True(t, acc.IsEstablished())
}

func TestForgedProofRejected(t *testing.T) {
	m := MustNewMechanism(Options{ForgeProof: true})
	init, _ := m.NewContext(DefaultAcceptorName)

	_, err := Establish(init, m.NewAcceptor())
	assert.ErrorIs(t, err, ErrBadProof)
	assert.False(t, init.IsEstablished())
}

func TestUnknownTarget(t *testing.T) {
	m := MustNewMechanism(Options{})
	init, _ := m.NewContext("host/elsewhere")

	_, err := Establish(init, m.NewAcceptor())
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestStepAfterEstablished(t *testing.T) {
	init, _, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	_, err = init.Step(nil)
	assert.ErrorIs(t, err, gss.ErrAlreadyEstablished)
}

func TestDefectiveHandshakeToken(t *testing.T) {
	acc := MustNewMechanism(Options{}).NewAcceptor()
	_, err := acc.Step([]byte{0xFF, 0x00})
	assert.ErrorIs(t, err, gss.ErrDefectiveToken)
}

func TestWrapUnwrap(t *testing.T) {
	init, acc, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	for _, conf := range []bool{true, false} {
		msg := []byte("\x00\x00\x00\x02hello")
		tok, err := init.Wrap(msg, &gss.MessageProp{Confidential: conf})
		require.NoError(t, err)

		prop := gss.MessageProp{QOP: 7}
		got, err := acc.Unwrap(tok, &prop)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
		assert.Equal(t, conf, prop.Confidential)
		assert.Equal(t, gss.DefaultQOP, prop.QOP)

		if conf {
			assert.NotContains(t, string(tok), "hello")
		}
	}
}

func TestWrapIsDirectional(t *testing.T) {
	init, _, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	tok, err := init.Wrap([]byte("x"), &gss.MessageProp{Confidential: true})
	require.NoError(t, err)

	_, err = init.Unwrap(tok, nil)
	assert.ErrorIs(t, err, gss.ErrBadMIC)
}

func TestUnwrapTampered(t *testing.T) {
	init, acc, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	tok, err := acc.Wrap([]byte("response"), &gss.MessageProp{})
	require.NoError(t, err)
	tok[len(tok)-1] ^= 0x01

	_, err = init.Unwrap(tok, nil)
	assert.ErrorIs(t, err, gss.ErrBadMIC)

	_, err = init.Unwrap([]byte{1, 2, 3}, nil)
	assert.ErrorIs(t, err, gss.ErrDefectiveToken)
}

func TestMIC(t *testing.T) {
	init, acc, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	msg := []byte("plaintext")
	tag, err := init.GetMIC(msg, &gss.MessageProp{})
	require.NoError(t, err)

	require.NoError(t, acc.VerifyMIC(tag, msg, &gss.MessageProp{}))
	assert.ErrorIs(t, acc.VerifyMIC(tag, []byte("other"), &gss.MessageProp{}), gss.ErrBadMIC)
	assert.ErrorIs(t, init.VerifyMIC(tag, msg, &gss.MessageProp{}), gss.ErrBadMIC)
}

func TestNonDefaultQOP(t *testing.T) {
	init, _, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	_, err = init.Wrap([]byte("x"), &gss.MessageProp{QOP: 1})
	assert.ErrorIs(t, err, gss.ErrBadQOP)
	_, err = init.GetMIC([]byte("x"), &gss.MessageProp{QOP: 1})
	assert.ErrorIs(t, err, gss.ErrBadQOP)
}

func TestNotEstablished(t *testing.T) {
	init, _ := MustNewMechanism(Options{}).NewContext(DefaultAcceptorName)

	_, err := init.Wrap([]byte("x"), nil)
	assert.ErrorIs(t, err, gss.ErrNotEstablished)
	_, err = init.GetMIC([]byte("x"), nil)
	assert.ErrorIs(t, err, gss.ErrNotEstablished)
}

func TestDispose(t *testing.T) {
	init, _, err := MustNewMechanism(Options{}).Pair()
	require.NoError(t, err)

	require.NoError(t, init.Dispose())
	require.NoError(t, init.Dispose())

	_, err = init.Wrap([]byte("x"), nil)
	assert.ErrorIs(t, err, gss.ErrDisposed)
	_, err = init.Step(nil)
	assert.ErrorIs(t, err, gss.ErrDisposed)
}
