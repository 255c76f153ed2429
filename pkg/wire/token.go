package wire

import (
	"fmt"
	"strings"
)

// Flag is the first byte of every token.
type Flag uint8

// Token kinds.
const (
	FlagNoop    Flag = 1 << 0
	FlagContext Flag = 1 << 1
	FlagData    Flag = 1 << 2
	FlagMIC     Flag = 1 << 3
)

// Token modifiers.
const (
	// FlagContextNext announces that a context token follows.
	FlagContextNext Flag = 1 << 4

	// FlagSendMIC asks the receiver to reply with a MIC of the plaintext.
	FlagSendMIC Flag = 1 << 5
)

// Has reports whether every bit of bits is set in f.
func (f Flag) Has(bits Flag) bool {
	return f&bits == bits
}

// String returns the flag as a "|"-joined list of bit names.
func (f Flag) String() string {
	names := []struct {
		bit  Flag
		name string
	}{
		{FlagNoop, "NOOP"},
		{FlagContext, "CONTEXT"},
		{FlagData, "DATA"},
		{FlagMIC, "MIC"},
		{FlagContextNext, "CONTEXT_NEXT"},
		{FlagSendMIC, "SEND_MIC"},
	}
	var parts []string
	rest := f
	for _, n := range names {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Token is one decoded protocol token. The set of implementations is
// closed: NoopToken, ContextToken, DataToken and MICToken.
type Token interface {
	// Flag returns the flag byte to put on the wire.
	Flag() Flag

	// Payload returns the token payload.
	Payload() []byte

	isToken()
}

// NoopToken opens the exchange.
type NoopToken struct {
	// ContextNext announces that context-establishment tokens follow.
	ContextNext bool
}

// ContextToken carries one security-context establishment token.
type ContextToken struct {
	Data []byte
}

// DataToken carries a wrapped CommandRequest or CommandResponse.
type DataToken struct {
	Ciphertext []byte

	// SendMIC asks the peer to confirm receipt with a MIC token.
	SendMIC bool
}

// MICToken carries a message integrity code over a DATA plaintext.
type MICToken struct {
	Tag []byte
}

// Flag returns NOOP, with CONTEXT_NEXT when set.
func (t NoopToken) Flag() Flag {
	if t.ContextNext {
		return FlagNoop | FlagContextNext
	}
	return FlagNoop
}

// Payload is always empty.
func (NoopToken) Payload() []byte { return nil }

// Flag returns CONTEXT.
func (ContextToken) Flag() Flag { return FlagContext }

// Payload returns the security mechanism token.
func (t ContextToken) Payload() []byte { return t.Data }

// Flag returns DATA, with SEND_MIC when a MIC is requested.
func (t DataToken) Flag() Flag {
	if t.SendMIC {
		return FlagData | FlagSendMIC
	}
	return FlagData
}

// Payload returns the wrapped message.
func (t DataToken) Payload() []byte { return t.Ciphertext }

// Flag returns MIC.
func (MICToken) Flag() Flag { return FlagMIC }

// Payload returns the integrity tag.
func (t MICToken) Payload() []byte { return t.Tag }

func (NoopToken) isToken()    {}
func (ContextToken) isToken() {}
func (DataToken) isToken()    {}
func (MICToken) isToken()     {}

// ParseToken selects the token variant for a flag read from the wire.
// When several kind bits are set the first match in the order DATA, MIC,
// CONTEXT, NOOP wins. A flag without any kind bit is rejected.
func ParseToken(flag Flag, payload []byte) (Token, error) {
	switch {
	case flag&FlagData != 0:
		return DataToken{Ciphertext: payload, SendMIC: flag&FlagSendMIC != 0}, nil
	case flag&FlagMIC != 0:
		return MICToken{Tag: payload}, nil
	case flag&FlagContext != 0:
		return ContextToken{Data: payload}, nil
	case flag&FlagNoop != 0:
		return NoopToken{ContextNext: flag&FlagContextNext != 0}, nil
	default:
		return nil, fmt.Errorf("%w: token flag %s has no token kind", ErrProtocol, flag)
	}
}

// KindOf returns the name of a token variant, for error messages.
func KindOf(t Token) string {
	switch t.(type) {
	case NoopToken:
		return "NOOP"
	case ContextToken:
		return "CONTEXT"
	case DataToken:
		return "DATA"
	case MICToken:
		return "MIC"
	default:
		return "UNKNOWN"
	}
}
