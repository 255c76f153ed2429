package remctl

import (
	"fmt"

	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// Handshake establishes the security context. It returns nil only when
// the context is established and the server has authenticated itself.
func (s *Session) Handshake() error {
	if s.state != StateStart {
		return outOfOrder("handshake in state %s", s.state)
	}

	if err := s.write(wire.NoopToken{ContextNext: true}); err != nil {
		s.setState(StateFailed, "initial token")
		return s.fail("handshake", fmt.Errorf("send initial token: %w", err))
	}
	s.setState(StateEstablishing, "")

	if err := s.establish(); err != nil {
		s.setState(StateFailed, "context establishment")
		return s.fail("handshake", err)
	}

	if !s.secCtx.MutualAuthenticated() {
		s.setState(StateFailed, "mutual authentication")
		return s.fail("handshake", wire.ErrMutualAuthentication)
	}

	s.localName = s.secCtx.LocalName()
	s.peerName = s.secCtx.PeerName()
	s.setState(StateEstablished, s.peerName)
	return nil
}

// establish loops on IsEstablished. The first Step always gets an empty
// input; later inputs come from CONTEXT tokens.
func (s *Session) establish() error {
	input := []byte{}
	for round := 1; ; round++ {
		if round > s.config.MaxContextRounds {
			return fmt.Errorf("%w: context not established after %d rounds", wire.ErrProtocol, s.config.MaxContextRounds)
		}

		output, err := s.secCtx.Step(input)
		if err != nil {
			return fmt.Errorf("%w: %w", wire.ErrSecurityContext, err)
		}
		if len(output) > 0 {
			if err := s.write(wire.ContextToken{Data: output}); err != nil {
				return fmt.Errorf("send context token: %w", err)
			}
		}
		if s.secCtx.IsEstablished() {
			return nil
		}

		tok, err := s.read()
		if err != nil {
			return fmt.Errorf("read context token: %w", err)
		}
		ct, ok := tok.(wire.ContextToken)
		if !ok {
			return fmt.Errorf("%w: expected CONTEXT token, got %s", wire.ErrProtocol, wire.KindOf(tok))
		}
		input = ct.Data
	}
}
