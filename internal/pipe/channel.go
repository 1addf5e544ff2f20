package pipe

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/tmgtoolbox/aimsunbridge/internal/errors"
)

// ErrAlreadyConnected is returned by WaitForConnection once a client is attached.
var ErrAlreadyConnected = stderrors.New("channel already has a client")

// Path returns the address of the endpoint called name.
func Path(name string) string {
	return filepath.Join(os.TempDir(), "aimsunbridge-"+name+".sock")
}

// Channel is a single-client, bidirectional byte stream to the worker.
type Channel struct {
	log  *slog.Logger
	name string
	addr string

	mu     sync.Mutex // Protects ln, conn and closed
	ln     net.Listener
	conn   net.Conn
	closed bool
}

// Create opens the server endpoint for name. It must be called before the
// worker is launched so the worker never looks for an endpoint that does
// not exist yet.
func Create(log *slog.Logger, name string) (*Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("create channel: empty name")
	}

	addr := Path(name)

	// A socket file left behind by a crashed session would make Listen fail.
	if err := os.Remove(addr); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale endpoint: %w", err)
	}

	ln, err := net.Listen("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("create channel %q: %w", name, err)
	}

	log = log.With("component", "channel", "pipe", name)
	log.Debug("Created channel endpoint", "addr", addr)

	return &Channel{
		log:  log,
		name: name,
		addr: addr,
		ln:   ln,
	}, nil
}

// Attach wraps a connection that is already established, such as one half
// of net.Pipe. The channel starts out connected.
func Attach(log *slog.Logger, name string, conn net.Conn) *Channel {
	return &Channel{
		log:  log.With("component", "channel", "pipe", name),
		name: name,
		addr: name,
		conn: conn,
	}
}

// Dial connects to the endpoint at addr as the worker does.
func Dial(addr string) (net.Conn, error) {
	conn, err := net.Dial("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("dial channel %s: %w", addr, err)
	}

	return conn, nil
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Addr returns the address a worker dials to reach this channel.
func (c *Channel) Addr() string { return c.addr }

// WaitForConnection blocks until the worker attaches. Only one client is
// accepted; the endpoint stops listening afterwards. Cancelling ctx aborts
// the wait and closes the endpoint.
func (c *Channel) WaitForConnection(ctx context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return net.ErrClosed
	}

	if c.conn != nil {
		c.mu.Unlock()

		return ErrAlreadyConnected
	}

	ln := c.ln
	c.mu.Unlock()

	c.log.Debug("Waiting for worker to connect")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	conn, err := ln.Accept()
	stop()

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("accept worker connection: %w", err)
	}

	_ = ln.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		_ = conn.Close()

		return net.ErrClosed
	}

	c.conn = conn
	c.ln = nil

	c.log.Info("Worker connected")

	return nil
}

// Connected reports whether a worker is attached and the channel is open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil && !c.closed
}

// Read reads from the worker.
func (c *Channel) Read(p []byte) (int, error) {
	conn, err := c.current()
	if err != nil {
		return 0, err
	}

	return conn.Read(p)
}

// Write writes to the worker. Writes are not buffered.
func (c *Channel) Write(p []byte) (int, error) {
	conn, err := c.current()
	if err != nil {
		return 0, err
	}

	return conn.Write(p)
}

// Close closes the endpoint and any attached connection. It is safe to
// call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	var errs []error

	if c.ln != nil {
		if err := c.ln.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}

		c.ln = nil
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}

	c.log.Debug("Closed channel")

	return stderrors.Join(errs...)
}

func (c *Channel) current() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, net.ErrClosed
	}

	if c.conn == nil {
		return nil, errors.ErrNotConnected
	}

	return c.conn, nil
}
