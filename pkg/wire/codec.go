package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// lengthSize is the size of every count and length field.
	lengthSize = 4

	// statusSize is the size of the response status field.
	statusSize = 4
)

// CommandRequest is the plaintext of the client's DATA token.
type CommandRequest struct {
	// Args is the ordered argument vector. Each argument is opaque.
	Args [][]byte
}

// CommandResponse is the plaintext of the server's DATA token.
type CommandResponse struct {
	// Status is the exit status of the remote command.
	Status int32

	// Message is the output of the remote command.
	Message []byte
}

// Text returns the message as a string.
func (r *CommandResponse) Text() string {
	return string(r.Message)
}

// StringArgs converts text arguments into a CommandRequest.
func StringArgs(args ...string) *CommandRequest {
	req := &CommandRequest{Args: make([][]byte, len(args))}
	for i, a := range args {
		req.Args[i] = []byte(a)
	}
	return req
}

// EncodedSize returns the number of bytes Encode produces.
func (r *CommandRequest) EncodedSize() int {
	n := lengthSize
	for _, a := range r.Args {
		n += lengthSize + len(a)
	}
	return n
}

// Encode serializes the request.
func (r *CommandRequest) Encode() ([]byte, error) {
	if uint64(len(r.Args)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many arguments", ErrProtocol)
	}
	buf := make([]byte, 0, r.EncodedSize())
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Args)))
	for i, a := range r.Args {
		if uint64(len(a)) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: argument %d too long", ErrProtocol, i)
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(a)))
		buf = append(buf, a...)
	}
	return buf, nil
}

// DecodeCommandRequest parses a request plaintext. The whole buffer must
// be consumed.
func DecodeCommandRequest(data []byte) (*CommandRequest, error) {
	d := decoder{buf: data}
	count, err := d.readUint32("argument count")
	if err != nil {
		return nil, err
	}
	// Every argument needs at least its length field.
	if uint64(count)*lengthSize > uint64(d.remaining()) {
		return nil, fmt.Errorf("%w: argument count %d exceeds message size %d", ErrProtocol, count, len(data))
	}

	req := &CommandRequest{Args: make([][]byte, 0, count)}
	for i := uint32(0); i < count; i++ {
		arg, err := d.readBytes(fmt.Sprintf("argument %d", i))
		if err != nil {
			return nil, err
		}
		req.Args = append(req.Args, arg)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return req, nil
}

// Encode serializes the response.
func (r *CommandResponse) Encode() ([]byte, error) {
	if uint64(len(r.Message)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: message too long", ErrProtocol)
	}
	buf := make([]byte, 0, statusSize+lengthSize+len(r.Message))
	buf = binary.BigEndian.AppendUint32(buf, uint32(r.Status))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Message)))
	buf = append(buf, r.Message...)
	return buf, nil
}

// DecodeCommandResponse parses a response plaintext. The whole buffer
// must be consumed.
func DecodeCommandResponse(data []byte) (*CommandResponse, error) {
	d := decoder{buf: data}
	status, err := d.readUint32("status")
	if err != nil {
		return nil, err
	}
	msg, err := d.readBytes("message")
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &CommandResponse{Status: int32(status), Message: msg}, nil
}

// decoder reads big-endian fields without crossing the end of buf.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) readUint32(field string) (uint32, error) {
	if d.remaining() < lengthSize {
		return 0, fmt.Errorf("%w: truncated %s", ErrProtocol, field)
	}
	v := binary.BigEndian.Uint32(d.buf[d.off:])
	d.off += lengthSize
	return v, nil
}

func (d *decoder) readBytes(field string) ([]byte, error) {
	n, err := d.readUint32(field + " length")
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.remaining()) {
		return nil, fmt.Errorf("%w: %s length %d exceeds remaining %d bytes", ErrProtocol, field, n, d.remaining())
	}
	out := make([]byte, n)
	copy(out, d.buf[d.off:])
	d.off += int(n)
	return out, nil
}

func (d *decoder) finish() error {
	if d.remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrProtocol, d.remaining())
	}
	return nil
}
