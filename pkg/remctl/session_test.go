package remctl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/gss/mocks"
	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

type rawToken struct {
	flag    wire.Flag
	payload []byte
}

// tokenStream replays queued tokens and records written ones.
type tokenStream struct {
	reads  []rawToken
	writes []rawToken
}

func (s *tokenStream) queue(flag wire.Flag, payload []byte) *tokenStream {
	s.reads = append(s.reads, rawToken{flag, payload})
	return s
}

func (s *tokenStream) ReadToken() (wire.Flag, []byte, error) {
	if len(s.reads) == 0 {
		return 0, nil, transport.ErrConnectionClosed
	}
	t := s.reads[0]
	s.reads = s.reads[1:]
	return t.flag, t.payload, nil
}

func (s *tokenStream) WriteToken(flag wire.Flag, payload []byte) error {
	s.writes = append(s.writes, rawToken{flag, append([]byte(nil), payload...)})
	return nil
}

func (s *tokenStream) wroteFlag(flag wire.Flag) bool {
	for _, w := range s.writes {
		if w.flag&flag != 0 {
			return true
		}
	}
	return false
}

type eventRecorder struct {
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) { r.events = append(r.events, e) }

func (r *eventRecorder) states() []string {
	var out []string
	for _, e := range r.events {
		if e.StateChange != nil {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

// establishedMock expects a one-leg handshake that ends mutually authenticated.
func establishedMock(t *testing.T) *mocks.MockContext {
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step([]byte{}).Return([]byte("ap-req"), nil).Once()
	secCtx.EXPECT().IsEstablished().Return(true).Once()
	secCtx.EXPECT().MutualAuthenticated().Return(true).Once()
	secCtx.EXPECT().LocalName().Return("user@EXAMPLE.COM").Maybe()
	secCtx.EXPECT().PeerName().Return("host/server.example.com").Maybe()
	return secCtx
}

func establishedSession(t *testing.T, stream *tokenStream, config SessionConfig) (*Session, *mocks.MockContext) {
	t.Helper()
	secCtx := establishedMock(t)
	s := NewSession(stream, secCtx, config)
	require.NoError(t, s.Handshake())
	return s, secCtx
}

// ===========================================================================
// Handshake
// ===========================================================================

func TestHandshakeSendsNoopThenContextWithEmptyFirstInput(t *testing.T) {
	stream := &tokenStream{}
	rec := &eventRecorder{}
	s, _ := establishedSession(t, stream, SessionConfig{ProtocolLogger: rec, ConnectionID: "c1"})

	require.Len(t, stream.writes, 2)
	assert.Equal(t, wire.FlagNoop|wire.FlagContextNext, stream.writes[0].flag)
	assert.Empty(t, stream.writes[0].payload)
	assert.Equal(t, wire.FlagContext, stream.writes[1].flag)
	assert.Equal(t, []byte("ap-req"), stream.writes[1].payload)

	assert.Equal(t, StateEstablished, s.State())
	assert.Equal(t, "user@EXAMPLE.COM", s.LocalName())
	assert.Equal(t, "host/server.example.com", s.PeerName())
	assert.Equal(t, []string{"ESTABLISHING", "ESTABLISHED"}, rec.states())
	assert.Equal(t, "c1", rec.events[0].ConnectionID)
	assert.Equal(t, log.LayerSession, rec.events[0].Layer)
}

func TestHandshakeTerminatesForMultiLegExchanges(t *testing.T) {
	for _, legs := range []int{1, 2, 3} {
		t.Run(string(rune('0'+legs)), func(t *testing.T) {
			stream := &tokenStream{}
			secCtx := mocks.NewMockContext(t)

			established := false
			steps := 0
			secCtx.EXPECT().Step(mock.Anything).RunAndReturn(func(in []byte) ([]byte, error) {
				steps++
				if steps == 1 {
					assert.Empty(t, in)
				} else {
					assert.Equal(t, []byte{byte(steps - 1)}, in)
				}
				if steps == legs {
					established = true
				}
				return []byte{byte(steps)}, nil
			}).Times(legs)
			secCtx.EXPECT().IsEstablished().RunAndReturn(func() bool { return established })
			secCtx.EXPECT().MutualAuthenticated().Return(true).Once()
			secCtx.EXPECT().LocalName().Return("u")
			secCtx.EXPECT().PeerName().Return("p")

			for i := 1; i < legs; i++ {
				stream.queue(wire.FlagContext, []byte{byte(i)})
			}

			s := NewSession(stream, secCtx, SessionConfig{})
			require.NoError(t, s.Handshake())
			assert.Equal(t, legs, steps)
			assert.Len(t, stream.writes, legs+1)
			assert.Empty(t, stream.reads)
		})
	}
}

func TestHandshakeSkipsEmptyOutput(t *testing.T) {
	stream := (&tokenStream{}).queue(wire.FlagContext, []byte("ap-rep"))
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step([]byte{}).Return([]byte("ap-req"), nil).Once()
	secCtx.EXPECT().Step([]byte("ap-rep")).Return(nil, nil).Once()
	secCtx.EXPECT().IsEstablished().Return(false).Once()
	secCtx.EXPECT().IsEstablished().Return(true).Once()
	secCtx.EXPECT().MutualAuthenticated().Return(true)
	secCtx.EXPECT().LocalName().Return("u")
	secCtx.EXPECT().PeerName().Return("p")

	require.NoError(t, NewSession(stream, secCtx, SessionConfig{}).Handshake())
	assert.Len(t, stream.writes, 2, "no CONTEXT token for empty output")
}

func TestHandshakeRequiresMutualAuthentication(t *testing.T) {
	stream := &tokenStream{}
	rec := &eventRecorder{}
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step([]byte{}).Return([]byte("ap-req"), nil)
	secCtx.EXPECT().IsEstablished().Return(true)
	secCtx.EXPECT().MutualAuthenticated().Return(false)

	s := NewSession(stream, secCtx, SessionConfig{ProtocolLogger: rec})
	err := s.Handshake()
	assert.ErrorIs(t, err, wire.ErrMutualAuthentication)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, []string{"ESTABLISHING", "FAILED"}, rec.states())

	err = s.SendCommand(wire.StringArgs("status"))
	assert.ErrorIs(t, err, ErrSessionState)
	assert.False(t, stream.wroteFlag(wire.FlagData), "no DATA token after failed authentication")
}

func TestHandshakeRejectsNonContextToken(t *testing.T) {
	for name, flag := range map[string]wire.Flag{
		"data":    wire.FlagData,
		"mic":     wire.FlagMIC,
		"noop":    wire.FlagNoop,
		"no kind": wire.FlagSendMIC,
	} {
		t.Run(name, func(t *testing.T) {
			stream := (&tokenStream{}).queue(flag, []byte("x"))
			secCtx := mocks.NewMockContext(t)
			secCtx.EXPECT().Step([]byte{}).Return([]byte("ap-req"), nil).Once()
			secCtx.EXPECT().IsEstablished().Return(false)

			err := NewSession(stream, secCtx, SessionConfig{}).Handshake()
			assert.ErrorIs(t, err, wire.ErrProtocol)
		})
	}
}

func TestHandshakeStepFailure(t *testing.T) {
	cause := errors.New("no ticket")
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step([]byte{}).Return(nil, cause)

	err := NewSession(&tokenStream{}, secCtx, SessionConfig{}).Handshake()
	assert.ErrorIs(t, err, wire.ErrSecurityContext)
	assert.ErrorIs(t, err, cause)
}

func TestHandshakeReadFailure(t *testing.T) {
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step([]byte{}).Return([]byte("ap-req"), nil)
	secCtx.EXPECT().IsEstablished().Return(false)

	err := NewSession(&tokenStream{}, secCtx, SessionConfig{}).Handshake()
	assert.ErrorIs(t, err, wire.ErrProtocolIO)
}

func TestHandshakeRoundCeiling(t *testing.T) {
	stream := &tokenStream{}
	for range 4 {
		stream.queue(wire.FlagContext, []byte("again"))
	}
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Step(mock.Anything).Return([]byte("more"), nil).Times(3)
	secCtx.EXPECT().IsEstablished().Return(false)

	err := NewSession(stream, secCtx, SessionConfig{MaxContextRounds: 3}).Handshake()
	assert.ErrorIs(t, err, wire.ErrProtocol)
}

func TestHandshakeTwice(t *testing.T) {
	s, _ := establishedSession(t, &tokenStream{}, SessionConfig{})
	assert.ErrorIs(t, s.Handshake(), ErrSessionState)
}

// ===========================================================================
// Command exchange
// ===========================================================================

func TestSendCommandWrapsAndVerifiesMIC(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := establishedSession(t, stream, SessionConfig{})

	req := wire.StringArgs("status")
	plaintext, err := req.Encode()
	require.NoError(t, err)

	secCtx.EXPECT().Wrap(plaintext, &gss.MessageProp{QOP: 0, Confidential: true}).Return([]byte("sealed"), nil).Once()
	secCtx.EXPECT().VerifyMIC([]byte("tag"), plaintext, mock.Anything).Return(nil).Once()
	stream.queue(wire.FlagMIC, []byte("tag"))

	require.NoError(t, s.SendCommand(req))

	last := stream.writes[len(stream.writes)-1]
	assert.Equal(t, wire.FlagData|wire.FlagSendMIC, last.flag)
	assert.Equal(t, []byte("sealed"), last.payload)
}

func TestSendCommandBadMICRefusesResponse(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := establishedSession(t, stream, SessionConfig{})

	secCtx.EXPECT().Wrap(mock.Anything, mock.Anything).Return([]byte("sealed"), nil)
	secCtx.EXPECT().VerifyMIC(mock.Anything, mock.Anything, mock.Anything).Return(gss.ErrBadMIC)
	stream.queue(wire.FlagMIC, []byte("forged"))
	stream.queue(wire.FlagData, []byte("response"))

	err := s.SendCommand(wire.StringArgs("status"))
	assert.ErrorIs(t, err, wire.ErrIntegrity)
	assert.ErrorIs(t, err, gss.ErrBadMIC)

	_, err = s.ReadResponse()
	assert.ErrorIs(t, err, ErrSessionState)
	assert.Len(t, stream.reads, 1, "response token left unread")
}

func TestSendCommandMissingMIC(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := establishedSession(t, stream, SessionConfig{})
	secCtx.EXPECT().Wrap(mock.Anything, mock.Anything).Return([]byte("sealed"), nil)
	stream.queue(wire.FlagData, []byte("response"))

	err := s.SendCommand(wire.StringArgs("status"))
	assert.ErrorIs(t, err, wire.ErrProtocol)
}

func TestSendCommandOptionalMICKeepsResponse(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := establishedSession(t, stream, SessionConfig{OptionalRequestMIC: true})

	respPlain, err := (&wire.CommandResponse{Status: 3, Message: []byte("late")}).Encode()
	require.NoError(t, err)

	secCtx.EXPECT().Wrap(mock.Anything, mock.Anything).Return([]byte("sealed"), nil)
	secCtx.EXPECT().Unwrap([]byte("response"), mock.Anything).Return(respPlain, nil).Once()
	secCtx.EXPECT().GetMIC(respPlain, mock.Anything).Return([]byte("ack"), nil).Once()
	stream.queue(wire.FlagData, []byte("response"))

	require.NoError(t, s.SendCommand(wire.StringArgs("status")))
	resp, err := s.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(3), resp.Status)
	assert.Equal(t, "late", resp.Text())
}

func TestSendCommandWrapFailure(t *testing.T) {
	s, secCtx := establishedSession(t, &tokenStream{}, SessionConfig{})
	secCtx.EXPECT().Wrap(mock.Anything, mock.Anything).Return(nil, gss.ErrNotEstablished)

	err := s.SendCommand(wire.StringArgs("x"))
	assert.ErrorIs(t, err, wire.ErrSecurityContext)
}

func TestSendCommandBeforeHandshake(t *testing.T) {
	s := NewSession(&tokenStream{}, mocks.NewMockContext(t), SessionConfig{})
	assert.ErrorIs(t, s.SendCommand(wire.StringArgs("x")), ErrSessionState)
}

// ===========================================================================
// Response decoding
// ===========================================================================

func sentCommandSession(t *testing.T, stream *tokenStream) (*Session, *mocks.MockContext) {
	t.Helper()
	s, secCtx := establishedSession(t, stream, SessionConfig{})
	secCtx.EXPECT().Wrap(mock.Anything, mock.Anything).Return([]byte("sealed"), nil)
	secCtx.EXPECT().VerifyMIC(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	stream.queue(wire.FlagMIC, []byte("tag"))
	require.NoError(t, s.SendCommand(wire.StringArgs("status")))
	return s, secCtx
}

func TestReadResponseResetsQOPAndSendsMIC(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := sentCommandSession(t, stream)

	respPlain, err := (&wire.CommandResponse{Status: 0, Message: []byte("ok")}).Encode()
	require.NoError(t, err)
	stream.queue(wire.FlagData, []byte("wrapped"))

	secCtx.EXPECT().Unwrap([]byte("wrapped"), mock.Anything).
		Run(func(_ []byte, prop *gss.MessageProp) { prop.QOP = 9 }).
		Return(respPlain, nil).Once()
	secCtx.EXPECT().GetMIC(respPlain, mock.MatchedBy(func(p *gss.MessageProp) bool {
		return p.QOP == gss.DefaultQOP
	})).Return([]byte("mic"), nil).Once()

	resp, err := s.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, int32(0), resp.Status)
	assert.Equal(t, "ok", resp.Text())

	last := stream.writes[len(stream.writes)-1]
	assert.Equal(t, wire.FlagMIC, last.flag)
	assert.Equal(t, []byte("mic"), last.payload)

	_, err = s.ReadResponse()
	assert.ErrorIs(t, err, ErrSessionState)
}

func TestReadResponseRejectsNonDataWithoutUnwrap(t *testing.T) {
	for name, flag := range map[string]wire.Flag{
		"mic":     wire.FlagMIC,
		"context": wire.FlagContext,
		"noop":    wire.FlagNoop,
	} {
		t.Run(name, func(t *testing.T) {
			stream := &tokenStream{}
			s, _ := sentCommandSession(t, stream)
			stream.queue(flag, []byte("payload"))

			// Unwrap has no expectation; calling it would fail the mock.
			_, err := s.ReadResponse()
			assert.ErrorIs(t, err, wire.ErrProtocol)
			assert.Contains(t, err.Error(), "unexpected token type")
		})
	}
}

func TestReadResponseUnwrapIntegrityFailure(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := sentCommandSession(t, stream)
	stream.queue(wire.FlagData, []byte("tampered"))
	secCtx.EXPECT().Unwrap(mock.Anything, mock.Anything).Return(nil, gss.ErrBadMIC)

	_, err := s.ReadResponse()
	assert.ErrorIs(t, err, wire.ErrIntegrity)
	assert.False(t, stream.wroteFlag(wire.FlagMIC))
}

func TestReadResponseMalformedPlaintext(t *testing.T) {
	stream := &tokenStream{}
	s, secCtx := sentCommandSession(t, stream)
	stream.queue(wire.FlagData, []byte("wrapped"))
	secCtx.EXPECT().Unwrap(mock.Anything, mock.Anything).Return([]byte{0, 0, 0, 0, 0, 0, 0, 9, 'x'}, nil)

	_, err := s.ReadResponse()
	assert.ErrorIs(t, err, wire.ErrProtocol)
}

func TestCloseDisposesContext(t *testing.T) {
	secCtx := mocks.NewMockContext(t)
	secCtx.EXPECT().Dispose().Return(nil).Once()

	require.NoError(t, NewSession(&tokenStream{}, secCtx, SessionConfig{}).Close())
}

func TestHandshakeStateString(t *testing.T) {
	assert.Equal(t, "START", StateStart.String())
	assert.Equal(t, "ESTABLISHING", StateEstablishing.String())
	assert.Equal(t, "ESTABLISHED", StateEstablished.String())
	assert.Equal(t, "FAILED", StateFailed.String())
	assert.Equal(t, "UNKNOWN", HandshakeState(42).String())
}
