package remctl

import (
	"errors"
	"fmt"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// ReadResponse receives and unwraps the server's response, then confirms
// it with a MIC over the response plaintext.
func (s *Session) ReadResponse() (*wire.CommandResponse, error) {
	if s.phase != phaseCommandSent {
		return nil, outOfOrder("read response without a confirmed command")
	}
	s.phase = phaseBroken

	data, err := s.responseToken()
	if err != nil {
		return nil, s.fail("read response", err)
	}

	prop := gss.MessageProp{QOP: gss.DefaultQOP, Confidential: true}
	plaintext, err := s.secCtx.Unwrap(data.Ciphertext, &prop)
	if err != nil {
		kind := wire.ErrSecurityContext
		if errors.Is(err, gss.ErrBadMIC) {
			kind = wire.ErrIntegrity
		}
		return nil, s.fail("read response", fmt.Errorf("%w: unwrap response: %w", kind, err))
	}

	resp, err := wire.DecodeCommandResponse(plaintext)
	if err != nil {
		return nil, s.fail("read response", err)
	}

	prop.ResetQOP()
	tag, err := s.secCtx.GetMIC(plaintext, &prop)
	if err != nil {
		return nil, s.fail("read response", fmt.Errorf("%w: response MIC: %w", wire.ErrSecurityContext, err))
	}
	if err := s.write(wire.MICToken{Tag: tag}); err != nil {
		return nil, s.fail("read response", fmt.Errorf("send response MIC: %w", err))
	}

	s.phase = phaseDone
	s.debug("response received", "status", resp.Status, "size", len(resp.Message))
	return resp, nil
}

func (s *Session) responseToken() (wire.DataToken, error) {
	if s.pending != nil {
		data := *s.pending
		s.pending = nil
		return data, nil
	}

	tok, err := s.read()
	if err != nil {
		return wire.DataToken{}, fmt.Errorf("read response token: %w", err)
	}
	data, ok := tok.(wire.DataToken)
	if !ok {
		return wire.DataToken{}, fmt.Errorf("%w: unexpected token type %s", wire.ErrProtocol, wire.KindOf(tok))
	}
	return data, nil
}
