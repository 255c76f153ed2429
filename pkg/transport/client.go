package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// DefaultPort is the registered remctl port.
const DefaultPort = 4444

// ClientConfig configures a remctl transport client.
type ClientConfig struct {
	// MaxTokenSize is the token payload ceiling (default: DefaultMaxTokenSize).
	MaxTokenSize uint32

	// ConnectTimeout bounds dialing when ctx has no deadline (default: 30s).
	ConnectTimeout time.Duration

	// Resolver canonicalizes host names (default: NetResolver).
	Resolver Resolver
}

// Client dials remctl servers.
type Client struct {
	config ClientConfig
}

// NewClient creates a client, applying defaults.
func NewClient(config ClientConfig) *Client {
	if config.MaxTokenSize == 0 {
		config.MaxTokenSize = DefaultMaxTokenSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.Resolver == nil {
		config.Resolver = NetResolver{}
	}
	return &Client{config: config}
}

// CanonicalHost returns the canonical name of host via the configured resolver.
func (c *Client) CanonicalHost(ctx context.Context, host string) (string, error) {
	return c.config.Resolver.CanonicalHost(ctx, host)
}

// Connect dials host:port. A zero port selects DefaultPort.
func (c *Client) Connect(ctx context.Context, host string, port int) (*ClientConn, error) {
	if port == 0 {
		port = DefaultPort
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", wire.ErrProtocolIO, address, err)
	}

	return NewClientConn(conn, c.config.MaxTokenSize), nil
}

// ClientConn is one connection carrying one remctl operation.
type ClientConn struct {
	conn   net.Conn
	framer *Framer

	closeOnce sync.Once
	closeErr  error
}

// NewClientConn wraps an established stream connection.
func NewClientConn(conn net.Conn, maxTokenSize uint32) *ClientConn {
	if maxTokenSize == 0 {
		maxTokenSize = DefaultMaxTokenSize
	}
	return &ClientConn{
		conn:   conn,
		framer: NewFramerWithMaxSize(conn, maxTokenSize),
	}
}

// SetLogger configures protocol capture for this connection.
func (c *ClientConn) SetLogger(logger log.Logger, connID string) {
	c.framer.SetLogger(logger, connID)
}

// ReadToken reads one token.
func (c *ClientConn) ReadToken() (wire.Flag, []byte, error) {
	return c.framer.ReadToken()
}

// WriteToken writes and flushes one token.
func (c *ClientConn) WriteToken(flag wire.Flag, payload []byte) error {
	return c.framer.WriteToken(flag, payload)
}

// SetDeadline bounds all further I/O. A zero time clears it.
func (c *ClientConn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// LocalAddr returns the local network address.
func (c *ClientConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the server address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection. It is safe to call more than once.
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
