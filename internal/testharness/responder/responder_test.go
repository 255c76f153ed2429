package responder_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remctl-protocol/remctl-go/internal/testharness/responder"
	"github.com/remctl-protocol/remctl-go/pkg/gss/gsstest"
	"github.com/remctl-protocol/remctl-go/pkg/remctl"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

func TestStatusHandler(t *testing.T) {
	status, msg := responder.Status([][]byte{[]byte("status")})
	assert.Equal(t, int32(0), status)
	assert.Equal(t, "ok", string(msg))

	status, msg = responder.Status(nil)
	assert.Equal(t, int32(1), status)
	assert.Equal(t, "no command", string(msg))

	_, msg = responder.Status([][]byte{[]byte("a"), []byte("b")})
	assert.Equal(t, "a b", string(msg))
}

func TestServeOverPipe(t *testing.T) {
	mech := gsstest.MustNewMechanism(gsstest.Options{Legs: 2})
	r := responder.New(responder.Config{Mechanism: mech})

	clientConn, serverConn := net.Pipe()
	done := make(chan responder.Outcome, 1)
	go func() { done <- r.Serve(serverConn) }()

	secCtx, err := mech.NewContext(gsstest.DefaultAcceptorName)
	require.NoError(t, err)
	sess := remctl.NewSession(transport.NewFramer(clientConn), secCtx, remctl.SessionConfig{})
	require.NoError(t, sess.Handshake())
	require.NoError(t, sess.SendCommand(wire.StringArgs("status")))
	resp, err := sess.ReadResponse()
	require.NoError(t, err)
	require.NoError(t, sess.Close())
	clientConn.Close()

	assert.Equal(t, "ok", resp.Text())
	out := <-done
	require.NoError(t, out.Err)
	assert.True(t, out.Established)
	assert.True(t, out.ResponseMICVerified)
	assert.Len(t, r.Outcomes(), 1)
}

func TestServeRejectsMissingInitialToken(t *testing.T) {
	r := responder.New(responder.Config{Mechanism: gsstest.MustNewMechanism(gsstest.Options{})})

	clientConn, serverConn := net.Pipe()
	done := make(chan responder.Outcome, 1)
	go func() { done <- r.Serve(serverConn) }()

	require.NoError(t, transport.NewFramer(clientConn).WriteToken(wire.FlagContext, []byte("x")))
	out := <-done
	clientConn.Close()

	assert.ErrorIs(t, out.Err, responder.ErrUnexpectedToken)
	assert.False(t, out.Established)
}

func TestServeStallHoldsConnectionOpen(t *testing.T) {
	mech := gsstest.MustNewMechanism(gsstest.Options{})
	r := responder.New(responder.Config{
		Mechanism: mech,
		Behavior:  responder.Behavior{StallAfterHandshake: true},
	})

	clientConn, serverConn := net.Pipe()
	done := make(chan responder.Outcome, 1)
	go func() { done <- r.Serve(serverConn) }()

	secCtx, err := mech.NewContext(gsstest.DefaultAcceptorName)
	require.NoError(t, err)
	framer := transport.NewFramer(clientConn)
	sess := remctl.NewSession(framer, secCtx, remctl.SessionConfig{})
	require.NoError(t, sess.Handshake())
	require.NoError(t, framer.WriteToken(wire.FlagData|wire.FlagSendMIC, []byte("command")))
	require.NoError(t, framer.WriteToken(wire.FlagData, []byte("more")))

	select {
	case <-done:
		t.Fatal("responder returned while the client was still connected")
	case <-time.After(100 * time.Millisecond):
	}

	clientConn.Close()
	select {
	case out := <-done:
		assert.True(t, out.Established)
		assert.NoError(t, out.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not return after the client closed")
	}
}
