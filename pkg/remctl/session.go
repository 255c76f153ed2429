package remctl

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// DefaultMaxContextRounds bounds the handshake loop.
const DefaultMaxContextRounds = 32

// SessionConfig configures a Session.
type SessionConfig struct {
	// MaxContextRounds is the handshake loop ceiling (default: DefaultMaxContextRounds).
	MaxContextRounds int

	// OptionalRequestMIC accepts a response DATA token in place of the
	// request MIC. The MIC is still verified whenever it is sent.
	OptionalRequestMIC bool

	// ConnectionID tags protocol events.
	ConnectionID string

	// RemoteAddr and Principal are copied into protocol events.
	RemoteAddr string
	Principal  string

	// ProtocolLogger receives session-layer events. Nil disables capture.
	ProtocolLogger log.Logger

	// Logger receives operational messages. Nil disables logging.
	Logger *slog.Logger
}

// Session runs one remctl exchange over an open token stream.
// A Session is not safe for concurrent use.
type Session struct {
	tokens transport.TokenReadWriter
	secCtx gss.Context
	config SessionConfig

	state   HandshakeState
	phase   exchangePhase
	pending *wire.DataToken

	localName string
	peerName  string
}

// NewSession creates a session. The security context must be fresh; the
// session disposes it on Close.
func NewSession(tokens transport.TokenReadWriter, secCtx gss.Context, config SessionConfig) *Session {
	if config.MaxContextRounds <= 0 {
		config.MaxContextRounds = DefaultMaxContextRounds
	}
	return &Session{
		tokens: tokens,
		secCtx: secCtx,
		config: config,
	}
}

// State returns the handshake state.
func (s *Session) State() HandshakeState {
	return s.state
}

// LocalName returns the client identity recorded at establishment.
func (s *Session) LocalName() string {
	return s.localName
}

// PeerName returns the server identity recorded at establishment.
func (s *Session) PeerName() string {
	return s.peerName
}

// Close disposes the security context. The token stream is left open.
func (s *Session) Close() error {
	s.pending = nil
	return s.secCtx.Dispose()
}

func (s *Session) write(tok wire.Token) error {
	return s.tokens.WriteToken(tok.Flag(), tok.Payload())
}

func (s *Session) read() (wire.Token, error) {
	flag, payload, err := s.tokens.ReadToken()
	if err != nil {
		return nil, err
	}
	return wire.ParseToken(flag, payload)
}

func (s *Session) setState(next HandshakeState, reason string) {
	prev := s.state
	s.state = next
	s.emit(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: prev.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
	s.debug("handshake state", "from", prev, "to", next)
}

func (s *Session) fail(context string, err error) error {
	s.emit(log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: err.Error(),
			Context: context,
		},
	})
	s.debug("session failure", "context", context, "error", err)
	return err
}

func (s *Session) emit(event log.Event) {
	if s.config.ProtocolLogger == nil {
		return
	}
	event.Timestamp = time.Now()
	event.ConnectionID = s.config.ConnectionID
	event.Layer = log.LayerSession
	event.RemoteAddr = s.config.RemoteAddr
	event.Principal = s.config.Principal
	s.config.ProtocolLogger.Log(event)
}

func (s *Session) debug(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, append(args, "conn_id", s.config.ConnectionID)...)
	}
}

func outOfOrder(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSessionState, fmt.Sprintf(format, args...))
}
