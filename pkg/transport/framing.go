package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// Framing constants.
const (
	// HeaderSize is the flag byte plus the 4-byte length.
	HeaderSize = 5

	// DefaultMaxTokenSize bounds token payloads (1 MiB of data plus room
	// for security-layer overhead).
	DefaultMaxTokenSize = 1<<20 + 64<<10

	// MaxLogTokenDataSize is the largest payload copied into a log event.
	MaxLogTokenDataSize = 4096
)

// Framing errors.
var (
	// ErrTokenTooLarge indicates a declared or supplied length above the ceiling.
	ErrTokenTooLarge = fmt.Errorf("%w: token too large", wire.ErrProtocolIO)

	// ErrTokenTruncated indicates the stream ended inside a token.
	ErrTokenTruncated = fmt.Errorf("%w: token truncated", wire.ErrProtocolIO)

	// ErrConnectionClosed indicates the stream ended where a token was expected.
	ErrConnectionClosed = fmt.Errorf("%w: connection closed", wire.ErrProtocolIO)
)

// capture carries the optional protocol logger shared by readers and writers.
type capture struct {
	logger log.Logger
	connID string
}

func (c *capture) emit(flag wire.Flag, payload []byte, dir log.Direction) {
	if c.logger == nil {
		return
	}
	data := payload
	truncated := false
	if len(data) > MaxLogTokenDataSize {
		data = data[:MaxLogTokenDataSize]
		truncated = true
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryToken,
		Token: &log.TokenEvent{
			Flag:      flag,
			Size:      len(payload),
			Data:      append([]byte(nil), data...),
			Truncated: truncated,
		},
	})
}

// TokenWriter writes framed tokens to an underlying writer.
// It is not safe for concurrent use; one operation owns the connection.
type TokenWriter struct {
	w            *bufio.Writer
	maxTokenSize uint32
	capture
}

// NewTokenWriter creates a writer with the default ceiling.
func NewTokenWriter(w io.Writer) *TokenWriter {
	return NewTokenWriterWithMaxSize(w, DefaultMaxTokenSize)
}

// NewTokenWriterWithMaxSize creates a writer with a custom ceiling.
func NewTokenWriterWithMaxSize(w io.Writer, maxSize uint32) *TokenWriter {
	return &TokenWriter{
		w:            bufio.NewWriter(w),
		maxTokenSize: maxSize,
	}
}

// SetLogger configures protocol capture. Pass nil to disable it.
func (tw *TokenWriter) SetLogger(logger log.Logger, connID string) {
	tw.logger = logger
	tw.connID = connID
}

// WriteToken writes one token and flushes it to the underlying writer.
// An empty payload is valid.
func (tw *TokenWriter) WriteToken(flag wire.Flag, payload []byte) error {
	if uint64(len(payload)) > uint64(tw.maxTokenSize) {
		return fmt.Errorf("%w: %d > %d", ErrTokenTooLarge, len(payload), tw.maxTokenSize)
	}

	var header [HeaderSize]byte
	header[0] = byte(flag)
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))

	if _, err := tw.w.Write(header[:]); err != nil {
		return fmt.Errorf("%w: write token header: %w", wire.ErrProtocolIO, err)
	}
	if _, err := tw.w.Write(payload); err != nil {
		return fmt.Errorf("%w: write token payload: %w", wire.ErrProtocolIO, err)
	}
	if err := tw.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush token: %w", wire.ErrProtocolIO, err)
	}

	tw.emit(flag, payload, log.DirectionOut)
	return nil
}

// TokenReader reads framed tokens from an underlying reader.
type TokenReader struct {
	r            io.Reader
	maxTokenSize uint32
	header       [HeaderSize]byte
	capture
}

// NewTokenReader creates a reader with the default ceiling.
func NewTokenReader(r io.Reader) *TokenReader {
	return NewTokenReaderWithMaxSize(r, DefaultMaxTokenSize)
}

// NewTokenReaderWithMaxSize creates a reader with a custom ceiling.
func NewTokenReaderWithMaxSize(r io.Reader, maxSize uint32) *TokenReader {
	return &TokenReader{
		r:            r,
		maxTokenSize: maxSize,
	}
}

// SetLogger configures protocol capture. Pass nil to disable it.
func (tr *TokenReader) SetLogger(logger log.Logger, connID string) {
	tr.logger = logger
	tr.connID = connID
}

// ReadToken reads exactly one token, blocking until its declared payload
// has arrived.
func (tr *TokenReader) ReadToken() (wire.Flag, []byte, error) {
	if _, err := io.ReadFull(tr.r, tr.header[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return 0, nil, ErrConnectionClosed
		case errors.Is(err, io.ErrUnexpectedEOF):
			return 0, nil, ErrTokenTruncated
		default:
			return 0, nil, fmt.Errorf("%w: read token header: %w", wire.ErrProtocolIO, err)
		}
	}

	flag := wire.Flag(tr.header[0])
	length := binary.BigEndian.Uint32(tr.header[1:])
	if length > tr.maxTokenSize {
		return 0, nil, fmt.Errorf("%w: %d > %d", ErrTokenTooLarge, length, tr.maxTokenSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(tr.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, ErrTokenTruncated
		}
		return 0, nil, fmt.Errorf("%w: read token payload: %w", wire.ErrProtocolIO, err)
	}

	tr.emit(flag, payload, log.DirectionIn)
	return flag, payload, nil
}

// Framer combines token reading and writing over one stream.
type Framer struct {
	*TokenReader
	*TokenWriter
}

// NewFramer creates a framer with the default ceiling.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxTokenSize)
}

// NewFramerWithMaxSize creates a framer with a custom ceiling.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	return &Framer{
		TokenReader: NewTokenReaderWithMaxSize(rw, maxSize),
		TokenWriter: NewTokenWriterWithMaxSize(rw, maxSize),
	}
}

// SetLogger configures protocol capture in both directions.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.TokenReader.SetLogger(logger, connID)
	f.TokenWriter.SetLogger(logger, connID)
}

// TokenSize returns the on-wire size of a token with the given payload.
func TokenSize(payloadSize int) int {
	return HeaderSize + payloadSize
}
