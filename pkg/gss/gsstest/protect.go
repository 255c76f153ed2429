package gsstest

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

const (
	wrapFlagSealed = 0x01
	wrapHeaderSize = 1 + chacha20poly1305.NonceSizeX
)

// keyedState holds the keys and direction shared by both context roles.
type keyedState struct {
	keys        *sessionKeys
	isInitiator bool
	established bool
	disposed    bool
}

func (s *keyedState) sendKeys() (seal, sign []byte) {
	if s.isInitiator {
		return s.keys.initiatorSeal, s.keys.initiatorSign
	}
	return s.keys.acceptorSeal, s.keys.acceptorSign
}

func (s *keyedState) recvKeys() (seal, sign []byte) {
	if s.isInitiator {
		return s.keys.acceptorSeal, s.keys.acceptorSign
	}
	return s.keys.initiatorSeal, s.keys.initiatorSign
}

func (s *keyedState) ready(prop *gss.MessageProp) error {
	if s.disposed {
		return gss.ErrDisposed
	}
	if !s.established {
		return gss.ErrNotEstablished
	}
	if prop != nil && prop.QOP != gss.DefaultQOP {
		return fmt.Errorf("%w: %d", gss.ErrBadQOP, prop.QOP)
	}
	return nil
}

func (s *keyedState) wrap(plaintext []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := s.ready(prop); err != nil {
		return nil, err
	}
	sealKey, _ := s.sendKeys()
	aead, err := chacha20poly1305.NewX(sealKey)
	if err != nil {
		return nil, err
	}

	header := make([]byte, wrapHeaderSize)
	confidential := prop == nil || prop.Confidential
	if confidential {
		header[0] = wrapFlagSealed
	}
	if _, err := rand.Read(header[1:]); err != nil {
		return nil, err
	}
	nonce := header[1:]

	if confidential {
		return aead.Seal(header, nonce, plaintext, header[:1]), nil
	}
	ad := append(append([]byte{}, header[:1]...), plaintext...)
	out := append(header, plaintext...)
	return aead.Seal(out, nonce, nil, ad), nil
}

func (s *keyedState) unwrap(token []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := s.ready(nil); err != nil {
		return nil, err
	}
	sealKey, _ := s.recvKeys()
	aead, err := chacha20poly1305.NewX(sealKey)
	if err != nil {
		return nil, err
	}
	if len(token) < wrapHeaderSize+aead.Overhead() {
		return nil, fmt.Errorf("%w: wrap token too short", gss.ErrDefectiveToken)
	}

	flags := token[0]
	nonce := token[1:wrapHeaderSize]
	body := token[wrapHeaderSize:]
	sealed := flags&wrapFlagSealed != 0

	var plaintext []byte
	if sealed {
		plaintext, err = aead.Open(nil, nonce, body, token[:1])
		if err != nil {
			return nil, gss.ErrBadMIC
		}
	} else {
		msg := body[:len(body)-aead.Overhead()]
		tag := body[len(body)-aead.Overhead():]
		ad := append(append([]byte{}, token[:1]...), msg...)
		if _, err := aead.Open(nil, nonce, tag, ad); err != nil {
			return nil, gss.ErrBadMIC
		}
		plaintext = append([]byte(nil), msg...)
	}

	if prop != nil {
		prop.QOP = gss.DefaultQOP
		prop.Confidential = sealed
	}
	return plaintext, nil
}

func mac(key, message []byte) []byte {
	h, err := blake2b.New256(key)
	if err != nil {
		// Keys are always keySize bytes, within blake2b's limit.
		panic(err)
	}
	h.Write(message)
	return h.Sum(nil)
}

func (s *keyedState) getMIC(message []byte, prop *gss.MessageProp) ([]byte, error) {
	if err := s.ready(prop); err != nil {
		return nil, err
	}
	_, signKey := s.sendKeys()
	return mac(signKey, message), nil
}

func (s *keyedState) verifyMIC(tag, message []byte, prop *gss.MessageProp) error {
	if err := s.ready(prop); err != nil {
		return err
	}
	_, signKey := s.recvKeys()
	if !equalMAC(tag, mac(signKey, message)) {
		return gss.ErrBadMIC
	}
	return nil
}

func equalMAC(got, want []byte) bool {
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (s *keyedState) dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true
	if s.keys != nil {
		s.keys.wipe()
	}
	return nil
}
