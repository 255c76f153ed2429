package remctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// Default client settings.
const (
	DefaultPort           = transport.DefaultPort
	DefaultConnectTimeout = 30 * time.Second
)

// ErrNoHost is returned by NewClient when Config.Host is empty.
var ErrNoHost = errors.New("remctl: no server host")

// Config configures a Client.
type Config struct {
	// Host is the server name or address.
	Host string

	// Port is the server port (default: DefaultPort).
	Port int

	// Principal is the server principal. Empty derives host/<canonical host>.
	Principal string

	// ConnectTimeout bounds dialing (default: DefaultConnectTimeout).
	ConnectTimeout time.Duration

	// IOTimeout bounds the whole exchange after connecting. Zero means no limit.
	IOTimeout time.Duration

	// MaxTokenSize is the token payload ceiling (default: transport.DefaultMaxTokenSize).
	MaxTokenSize uint32

	// MaxContextRounds bounds the handshake (default: DefaultMaxContextRounds).
	MaxContextRounds int

	// OptionalRequestMIC tolerates servers that answer the command
	// directly without a MIC.
	OptionalRequestMIC bool

	// Resolver canonicalizes Host for the default principal (default: transport.NetResolver).
	Resolver transport.Resolver

	// Logger receives operational messages. Nil disables logging.
	Logger *slog.Logger

	// ProtocolLogger receives token, state and error events. Nil disables capture.
	ProtocolLogger log.Logger
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxTokenSize == 0 {
		c.MaxTokenSize = transport.DefaultMaxTokenSize
	}
	if c.MaxContextRounds == 0 {
		c.MaxContextRounds = DefaultMaxContextRounds
	}
	if c.Resolver == nil {
		c.Resolver = transport.NetResolver{}
	}
}

// Result is the outcome of one command.
type Result struct {
	// Status is the command's exit status as reported by the server.
	Status int32

	// Message is the command output, exactly as received.
	Message []byte

	// ClientIdentity is the authenticated client principal.
	ClientIdentity string

	// ServerIdentity is the authenticated server principal.
	ServerIdentity string
}

// Text returns the message as a string.
func (r *Result) Text() string {
	return string(r.Message)
}

// Client runs remctl commands against one server. Each Run uses its own
// connection and security context; a Client may be used by several
// goroutines.
type Client struct {
	provider  gss.Provider
	config    Config
	transport *transport.Client
}

// NewClient creates a client for the configured server.
func NewClient(provider gss.Provider, config Config) (*Client, error) {
	if config.Host == "" {
		return nil, ErrNoHost
	}
	config.applyDefaults()

	return &Client{
		provider: provider,
		config:   config,
		transport: transport.NewClient(transport.ClientConfig{
			MaxTokenSize:   config.MaxTokenSize,
			ConnectTimeout: config.ConnectTimeout,
			Resolver:       config.Resolver,
		}),
	}, nil
}

// Principal returns the server principal a Run will target.
func (c *Client) Principal(ctx context.Context) (string, error) {
	if c.config.Principal != "" {
		return c.config.Principal, nil
	}
	host, err := c.transport.CanonicalHost(ctx, c.config.Host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", c.config.Host, err)
	}
	return gss.ServicePrincipal(host), nil
}

// Run executes one command. Arguments are opaque byte strings; an empty
// list is sent as a zero-argument request. The returned status is the
// command's, not an error: a non-zero status comes back with a nil error.
func (c *Client) Run(ctx context.Context, args [][]byte) (*Result, error) {
	connID := uuid.New().String()

	principal, err := c.Principal(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := c.transport.Connect(ctx, c.config.Host, c.config.Port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.config.ProtocolLogger != nil {
		conn.SetLogger(c.config.ProtocolLogger, connID)
	}
	if c.config.IOTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
			return nil, fmt.Errorf("%w: set deadline: %w", wire.ErrProtocolIO, err)
		}
	}

	c.debug("connected", "conn_id", connID, "remote", conn.RemoteAddr().String(), "principal", principal)

	secCtx, err := c.provider.NewContext(principal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", wire.ErrSecurityContext, err)
	}

	sess := NewSession(conn, secCtx, SessionConfig{
		MaxContextRounds:   c.config.MaxContextRounds,
		OptionalRequestMIC: c.config.OptionalRequestMIC,
		ConnectionID:       connID,
		RemoteAddr:         conn.RemoteAddr().String(),
		Principal:          principal,
		ProtocolLogger:     c.config.ProtocolLogger,
		Logger:             c.config.Logger,
	})
	defer sess.Close()

	resp, err := exchange(sess, args)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, fmt.Errorf("%w: %w", err, cause)
		}
		return nil, err
	}

	return &Result{
		Status:         resp.Status,
		Message:        resp.Message,
		ClientIdentity: sess.LocalName(),
		ServerIdentity: sess.PeerName(),
	}, nil
}

// RunCommand is Run with string arguments.
func (c *Client) RunCommand(ctx context.Context, args ...string) (*Result, error) {
	return c.Run(ctx, wire.StringArgs(args...).Args)
}

func exchange(sess *Session, args [][]byte) (*wire.CommandResponse, error) {
	if err := sess.Handshake(); err != nil {
		return nil, err
	}
	if err := sess.SendCommand(&wire.CommandRequest{Args: args}); err != nil {
		return nil, err
	}
	return sess.ReadResponse()
}

func (c *Client) debug(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
