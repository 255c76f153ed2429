package remctl

import (
	"fmt"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// SendCommand wraps and sends the request, then verifies the server's MIC
// over the request plaintext. After an integrity failure the session
// refuses to read a response.
func (s *Session) SendCommand(req *wire.CommandRequest) error {
	if s.state != StateEstablished {
		return outOfOrder("send command in handshake state %s", s.state)
	}
	if s.phase != phaseIdle {
		return outOfOrder("command already sent")
	}

	plaintext, err := req.Encode()
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	s.phase = phaseBroken
	prop := gss.MessageProp{QOP: gss.DefaultQOP, Confidential: true}
	ciphertext, err := s.secCtx.Wrap(plaintext, &prop)
	if err != nil {
		return s.fail("send command", fmt.Errorf("%w: wrap command: %w", wire.ErrSecurityContext, err))
	}

	if err := s.write(wire.DataToken{Ciphertext: ciphertext, SendMIC: true}); err != nil {
		return s.fail("send command", fmt.Errorf("send command: %w", err))
	}

	tok, err := s.read()
	if err != nil {
		return s.fail("send command", fmt.Errorf("read command MIC: %w", err))
	}

	switch t := tok.(type) {
	case wire.MICToken:
		if err := s.secCtx.VerifyMIC(t.Tag, plaintext, &prop); err != nil {
			return s.fail("send command", fmt.Errorf("%w: command MIC: %w", wire.ErrIntegrity, err))
		}
	case wire.DataToken:
		if !s.config.OptionalRequestMIC {
			return s.fail("send command", fmt.Errorf("%w: expected MIC token, got DATA", wire.ErrProtocol))
		}
		s.debug("server skipped command MIC")
		s.pending = &t
	default:
		return s.fail("send command", fmt.Errorf("%w: expected MIC token, got %s", wire.ErrProtocol, wire.KindOf(tok)))
	}

	s.phase = phaseCommandSent
	return nil
}
