// Package responder provides the server side of the remctl protocol for
// tests. It authenticates clients with a gsstest acceptor and can be told
// to misbehave at each step of the exchange.
package responder

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/gss/gsstest"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// Handler computes the response for a command.
type Handler func(args [][]byte) (status int32, message []byte)

// Behavior injects protocol faults.
type Behavior struct {
	// SkipCommandMIC answers the command with the response directly.
	SkipCommandMIC bool

	// CorruptCommandMIC flips a bit in the command MIC.
	CorruptCommandMIC bool

	// CorruptResponse flips a bit in the wrapped response.
	CorruptResponse bool

	// ResponseFlag replaces the response token flag when non-zero.
	ResponseFlag wire.Flag

	// ContextFlag replaces the flag of context tokens sent back when non-zero.
	ContextFlag wire.Flag

	// IntegrityOnly wraps the response without confidentiality.
	IntegrityOnly bool

	// MalformedResponse sends a response plaintext with trailing bytes.
	MalformedResponse bool

	// StallAfterHandshake stops responding once the context is established.
	StallAfterHandshake bool
}

// Config configures a Responder.
type Config struct {
	// Mechanism authenticates clients. Required.
	Mechanism *gsstest.Mechanism

	// Handler answers commands (default: Status).
	Handler Handler

	// Behavior injects faults.
	Behavior Behavior

	// MaxTokenSize is the token ceiling (default: transport.DefaultMaxTokenSize).
	MaxTokenSize uint32
}

// Outcome records what the responder observed on one connection.
type Outcome struct {
	// Established is true once the acceptor context completed.
	Established bool

	// Client is the authenticated client name.
	Client string

	// Args is the decoded command, nil if none arrived.
	Args [][]byte

	// ResponseMICVerified is true when the client's MIC over the response
	// plaintext verified.
	ResponseMICVerified bool

	// Err is the first failure, if any.
	Err error
}

// Status answers ["status"] with (0, "ok") and echoes anything else.
func Status(args [][]byte) (int32, []byte) {
	if len(args) == 1 && string(args[0]) == "status" {
		return 0, []byte("ok")
	}
	if len(args) == 0 {
		return 1, []byte("no command")
	}
	out := []byte{}
	for i, a := range args {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, a...)
	}
	return 0, out
}

// Responder serves remctl connections.
type Responder struct {
	config Config

	mu       sync.Mutex
	outcomes []Outcome
	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a responder.
func New(config Config) *Responder {
	if config.Handler == nil {
		config.Handler = Status
	}
	if config.MaxTokenSize == 0 {
		config.MaxTokenSize = transport.DefaultMaxTokenSize
	}
	return &Responder{config: config}
}

// Listen starts serving on a loopback port and returns its address.
func (r *Responder) Listen() (*net.TCPAddr, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.listener = ln
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.Serve(conn)
			}()
		}
	}()
	return ln.Addr().(*net.TCPAddr), nil
}

// Close stops the listener and waits for open connections to finish.
func (r *Responder) Close() error {
	r.mu.Lock()
	ln := r.listener
	r.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	r.wg.Wait()
	return err
}

// Outcomes returns the outcomes of finished connections.
func (r *Responder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

// Serve handles one connection and closes it.
func (r *Responder) Serve(conn net.Conn) Outcome {
	defer conn.Close()

	framer := transport.NewFramerWithMaxSize(conn, r.config.MaxTokenSize)
	acceptor := r.config.Mechanism.NewAcceptor()
	defer acceptor.Dispose()

	s := &serverSession{config: r.config, tokens: framer, ctx: acceptor}
	s.run()

	r.mu.Lock()
	r.outcomes = append(r.outcomes, s.outcome)
	r.mu.Unlock()
	return s.outcome
}

// ErrUnexpectedToken is recorded when the client sends the wrong token.
var ErrUnexpectedToken = errors.New("responder: unexpected token")

type serverSession struct {
	config  Config
	tokens  transport.TokenReadWriter
	ctx     gss.Context
	outcome Outcome
}

func (s *serverSession) run() {
	if err := s.handshake(); err != nil {
		s.outcome.Err = err
		return
	}
	if s.config.Behavior.StallAfterHandshake {
		// Drain until the client gives up and closes the connection.
		for {
			if _, _, err := s.tokens.ReadToken(); err != nil {
				return
			}
		}
	}
	if err := s.exchange(); err != nil {
		s.outcome.Err = err
	}
}

func (s *serverSession) handshake() error {
	flag, _, err := s.tokens.ReadToken()
	if err != nil {
		return fmt.Errorf("read initial token: %w", err)
	}
	if !flag.Has(wire.FlagNoop | wire.FlagContextNext) {
		return fmt.Errorf("%w: initial flag %s", ErrUnexpectedToken, flag)
	}

	contextFlag := wire.FlagContext
	if s.config.Behavior.ContextFlag != 0 {
		contextFlag = s.config.Behavior.ContextFlag
	}

	for !s.ctx.IsEstablished() {
		flag, payload, err := s.tokens.ReadToken()
		if err != nil {
			return fmt.Errorf("read context token: %w", err)
		}
		if !flag.Has(wire.FlagContext) {
			return fmt.Errorf("%w: context flag %s", ErrUnexpectedToken, flag)
		}
		out, err := s.ctx.Step(payload)
		if err != nil {
			return fmt.Errorf("accept context: %w", err)
		}
		if len(out) > 0 {
			if err := s.tokens.WriteToken(contextFlag, out); err != nil {
				return err
			}
		}
	}

	s.outcome.Established = true
	s.outcome.Client = s.ctx.PeerName()
	return nil
}

func (s *serverSession) exchange() error {
	b := s.config.Behavior

	flag, payload, err := s.tokens.ReadToken()
	if err != nil {
		return fmt.Errorf("read command: %w", err)
	}
	if !flag.Has(wire.FlagData) {
		return fmt.Errorf("%w: command flag %s", ErrUnexpectedToken, flag)
	}
	var prop gss.MessageProp
	plaintext, err := s.ctx.Unwrap(payload, &prop)
	if err != nil {
		return fmt.Errorf("unwrap command: %w", err)
	}
	req, err := wire.DecodeCommandRequest(plaintext)
	if err != nil {
		return err
	}
	s.outcome.Args = req.Args

	if !b.SkipCommandMIC {
		prop.ResetQOP()
		tag, err := s.ctx.GetMIC(plaintext, &prop)
		if err != nil {
			return err
		}
		if b.CorruptCommandMIC {
			tag[len(tag)-1] ^= 0x01
		}
		if err := s.tokens.WriteToken(wire.FlagMIC, tag); err != nil {
			return err
		}
	}

	status, message := s.config.Handler(req.Args)
	resp := &wire.CommandResponse{Status: status, Message: message}
	respPlain, err := resp.Encode()
	if err != nil {
		return err
	}
	if b.MalformedResponse {
		respPlain = append(respPlain, 0x00)
	}
	wrapped, err := s.ctx.Wrap(respPlain, &gss.MessageProp{Confidential: !b.IntegrityOnly})
	if err != nil {
		return err
	}
	if b.CorruptResponse {
		wrapped[len(wrapped)-1] ^= 0x01
	}
	respFlag := wire.FlagData
	if b.ResponseFlag != 0 {
		respFlag = b.ResponseFlag
	}
	if err := s.tokens.WriteToken(respFlag, wrapped); err != nil {
		return err
	}

	flag, tag, err := s.tokens.ReadToken()
	if err != nil {
		return fmt.Errorf("read response MIC: %w", err)
	}
	if !flag.Has(wire.FlagMIC) {
		return fmt.Errorf("%w: response MIC flag %s", ErrUnexpectedToken, flag)
	}
	if err := s.ctx.VerifyMIC(tag, respPlain, &gss.MessageProp{}); err != nil {
		return fmt.Errorf("verify response MIC: %w", err)
	}
	s.outcome.ResponseMICVerified = true
	return nil
}
