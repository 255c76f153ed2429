package krb5

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jcmturner/gokrb5/v8/crypto"
	"github.com/jcmturner/gokrb5/v8/crypto/etype"
	"github.com/jcmturner/gokrb5/v8/gssapi"
	"github.com/jcmturner/gokrb5/v8/iana/etypeID"
	"github.com/jcmturner/gokrb5/v8/iana/keyusage"
	"github.com/jcmturner/gokrb5/v8/types"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// ErrUnsupportedEnctype is returned for session keys without an RFC 4121
// per-message token profile.
var ErrUnsupportedEnctype = errors.New("krb5: unsupported encryption type")

// ErrUnexpectedSequence is returned for a verified token that is replayed,
// reordered or follows a gap.
var ErrUnexpectedSequence = fmt.Errorf("%w: unexpected sequence number", gss.ErrBadMIC)

// RFC 4121 token flags.
const (
	flagSentByAcceptor = 0x01
	flagSealed         = 0x02
	flagAcceptorSubkey = 0x04
)

const (
	cfxHeaderSize = 16
	fillerByte    = 0xFF
)

var wrapTokenID = [2]byte{0x05, 0x04}

func supportedEnctype(id int32) bool {
	switch id {
	case etypeID.AES128_CTS_HMAC_SHA1_96,
		etypeID.AES256_CTS_HMAC_SHA1_96,
		etypeID.AES128_CTS_HMAC_SHA256_128,
		etypeID.AES256_CTS_HMAC_SHA384_192:
		return true
	}
	return false
}

// cfx produces and consumes the RFC 4121 Wrap and MIC tokens for one side
// of an established context.
type cfx struct {
	key            types.EncryptionKey
	etype          etype.EType
	initiator      bool
	acceptorSubkey bool
	sendSeq        uint64
	recvSeq        uint64
}

func newCFX(key types.EncryptionKey, initiator, acceptorSubkey bool, sendSeq, recvSeq uint64) (*cfx, error) {
	if !supportedEnctype(key.KeyType) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEnctype, key.KeyType)
	}
	et, err := crypto.GetEtype(key.KeyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEnctype, err)
	}
	return &cfx{
		key:            key,
		etype:          et,
		initiator:      initiator,
		acceptorSubkey: acceptorSubkey,
		sendSeq:        sendSeq,
		recvSeq:        recvSeq,
	}, nil
}

func (c *cfx) nextSeq() uint64 {
	s := c.sendSeq
	c.sendSeq++
	return s
}

// acceptSeq advances the receive sequence. Only call it for tokens whose
// checksum verified.
func (c *cfx) acceptSeq(seq uint64) error {
	if seq != c.recvSeq {
		return fmt.Errorf("%w: got %d, want %d", ErrUnexpectedSequence, seq, c.recvSeq)
	}
	c.recvSeq++
	return nil
}

func (c *cfx) sendFlags() byte {
	var f byte
	if !c.initiator {
		f |= flagSentByAcceptor
	}
	if c.acceptorSubkey {
		f |= flagAcceptorSubkey
	}
	return f
}

func (c *cfx) sealUsage(sending bool) uint32 {
	if c.initiator == sending {
		return keyusage.GSSAPI_INITIATOR_SEAL
	}
	return keyusage.GSSAPI_ACCEPTOR_SEAL
}

func (c *cfx) signUsage(sending bool) uint32 {
	if c.initiator == sending {
		return keyusage.GSSAPI_INITIATOR_SIGN
	}
	return keyusage.GSSAPI_ACCEPTOR_SIGN
}

func wrapHeader(flags byte, ec, rrc uint16, seq uint64) []byte {
	h := make([]byte, cfxHeaderSize)
	h[0], h[1] = wrapTokenID[0], wrapTokenID[1]
	h[2] = flags
	h[3] = fillerByte
	binary.BigEndian.PutUint16(h[4:6], ec)
	binary.BigEndian.PutUint16(h[6:8], rrc)
	binary.BigEndian.PutUint64(h[8:16], seq)
	return h
}

func (c *cfx) wrap(plaintext []byte, confidential bool) ([]byte, error) {
	seq := c.nextSeq()

	if confidential {
		hdr := wrapHeader(c.sendFlags()|flagSealed, 0, 0, seq)
		msg := make([]byte, 0, len(plaintext)+cfxHeaderSize)
		msg = append(append(msg, plaintext...), hdr...)
		_, ct, err := c.etype.EncryptMessage(c.key.KeyValue, msg, c.sealUsage(true))
		if err != nil {
			return nil, fmt.Errorf("krb5: seal: %w", err)
		}
		return append(hdr, ct...), nil
	}

	hdr := wrapHeader(c.sendFlags(), 0, 0, seq)
	signed := make([]byte, 0, len(plaintext)+cfxHeaderSize)
	signed = append(append(signed, plaintext...), hdr...)
	cksum, err := c.etype.GetChecksumHash(c.key.KeyValue, signed, c.sealUsage(true))
	if err != nil {
		return nil, fmt.Errorf("krb5: checksum: %w", err)
	}
	binary.BigEndian.PutUint16(hdr[4:6], uint16(len(cksum)))

	out := make([]byte, 0, cfxHeaderSize+len(plaintext)+len(cksum))
	out = append(append(append(out, hdr...), plaintext...), cksum...)
	return out, nil
}

// unwrap returns the plaintext and whether it was sealed.
func (c *cfx) unwrap(token []byte) ([]byte, bool, error) {
	if len(token) < cfxHeaderSize || token[0] != wrapTokenID[0] || token[1] != wrapTokenID[1] {
		return nil, false, fmt.Errorf("%w: not a wrap token", gss.ErrDefectiveToken)
	}
	flags := token[2]
	if err := c.checkDirection(flags); err != nil {
		return nil, false, err
	}
	if token[3] != fillerByte {
		return nil, false, fmt.Errorf("%w: bad filler", gss.ErrDefectiveToken)
	}
	ec := int(binary.BigEndian.Uint16(token[4:6]))
	rrc := int(binary.BigEndian.Uint16(token[6:8]))
	seq := binary.BigEndian.Uint64(token[8:16])
	body := rotateLeft(token[cfxHeaderSize:], rrc)

	hdr := bytes.Clone(token[:cfxHeaderSize])
	binary.BigEndian.PutUint16(hdr[6:8], 0)

	if flags&flagSealed != 0 {
		pt, err := c.etype.DecryptMessage(c.key.KeyValue, body, c.sealUsage(false))
		if err != nil {
			return nil, true, fmt.Errorf("%w: %w", gss.ErrBadMIC, err)
		}
		if len(pt) < ec+cfxHeaderSize {
			return nil, true, fmt.Errorf("%w: sealed body too short", gss.ErrDefectiveToken)
		}
		if !bytes.Equal(pt[len(pt)-cfxHeaderSize:], hdr) {
			return nil, true, fmt.Errorf("%w: header mismatch", gss.ErrBadMIC)
		}
		if err := c.acceptSeq(seq); err != nil {
			return nil, true, err
		}
		return pt[:len(pt)-cfxHeaderSize-ec], true, nil
	}

	if len(body) < ec {
		return nil, false, fmt.Errorf("%w: checksum truncated", gss.ErrDefectiveToken)
	}
	msg := body[:len(body)-ec]
	cksum := body[len(body)-ec:]
	binary.BigEndian.PutUint16(hdr[4:6], 0)

	signed := make([]byte, 0, len(msg)+cfxHeaderSize)
	signed = append(append(signed, msg...), hdr...)
	if !c.etype.VerifyChecksum(c.key.KeyValue, signed, cksum, c.sealUsage(false)) {
		return nil, false, gss.ErrBadMIC
	}
	if err := c.acceptSeq(seq); err != nil {
		return nil, false, err
	}
	return bytes.Clone(msg), false, nil
}

func (c *cfx) checkDirection(flags byte) error {
	fromAcceptor := flags&flagSentByAcceptor != 0
	if fromAcceptor != c.initiator {
		return fmt.Errorf("%w: token sent in the wrong direction", gss.ErrDefectiveToken)
	}
	return nil
}

func (c *cfx) getMIC(message []byte) ([]byte, error) {
	mt := gssapi.MICToken{
		Flags:     c.sendFlags(),
		SndSeqNum: c.nextSeq(),
		Payload:   message,
	}
	if err := mt.SetChecksum(c.key, c.signUsage(true)); err != nil {
		return nil, fmt.Errorf("krb5: mic: %w", err)
	}
	return mt.Marshal()
}

func (c *cfx) verifyMIC(tag, message []byte) error {
	var mt gssapi.MICToken
	if err := mt.Unmarshal(tag, c.initiator); err != nil {
		return fmt.Errorf("%w: %w", gss.ErrDefectiveToken, err)
	}
	mt.Payload = message
	ok, err := mt.Verify(c.key, c.signUsage(false))
	if !ok {
		if err != nil {
			return fmt.Errorf("%w: %w", gss.ErrBadMIC, err)
		}
		return gss.ErrBadMIC
	}
	return c.acceptSeq(mt.SndSeqNum)
}

func rotateLeft(b []byte, n int) []byte {
	if len(b) == 0 {
		return b
	}
	n %= len(b)
	if n == 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	return append(append(out, b[n:]...), b[:n]...)
}
