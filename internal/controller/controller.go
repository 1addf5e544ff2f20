package controller

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/internal/errors"
	"github.com/tmgtoolbox/aimsunbridge/internal/frame"
	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// State is the lifecycle state of a controller.
type State int32

const (
	// StateDisconnected means the channel was lost; the controller must be disposed.
	StateDisconnected State = iota
	// StateConnected means the worker is attached and idle.
	StateConnected
	// StateBusy means a request is waiting for its terminal reply.
	StateBusy
	// StateDisposed means Dispose has run.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateBusy:
		return "busy"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Conn is the channel as seen by the controller.
type Conn interface {
	io.Reader
	io.Writer

	// Connected reports whether the worker is attached and the channel open.
	Connected() bool

	// Close closes the channel. It must be safe to call more than once.
	Close() error
}

// Config configures a Controller built over an existing connection.
type Config struct {
	// Logger is the slog logger for debug output.
	Logger *slog.Logger

	// PrintSink receives SentPrintMessage payloads. Defaults to config.StdoutSink.
	PrintSink config.PrintSink

	// ShutdownTimeout bounds the wait for the worker to exit on Dispose.
	// Defaults to config.DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Controller drives one worker through the request/response protocol.
//
// Every request holds mu from the moment its frame is written until a
// terminal reply is read, so at most one request is outstanding and no
// caller can read another caller's reply.
type Controller struct {
	log             *slog.Logger
	print           config.PrintSink
	shutdownTimeout time.Duration

	mu       sync.Mutex // Held for the whole write-then-read sequence
	conn     Conn
	handle   worker.Handle
	disposed bool
	fatalErr error // Set once the channel is unusable
	cleanup  runtime.Cleanup

	state atomic.Int32
}

// resources is what the garbage-collection safety net needs to release.
// It must not reference the Controller itself.
type resources struct {
	log     *slog.Logger
	conn    Conn
	handle  worker.Handle
	timeout time.Duration
}

// New builds a controller over a connected channel and consumes the
// worker's Start handshake. handle may be nil when there is no process to
// manage. Cancelling ctx during the handshake closes conn.
func New(ctx context.Context, conn Conn, handle worker.Handle, cfg Config) (*Controller, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sink := cfg.PrintSink
	if sink == nil {
		sink = config.StdoutSink
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}

	c := &Controller{
		log:             log.With("component", "controller"),
		print:           sink,
		shutdownTimeout: timeout,
		conn:            conn,
		handle:          handle,
	}

	if err := c.handshake(ctx); err != nil {
		return nil, err
	}

	c.state.Store(int32(StateConnected))
	c.cleanup = runtime.AddCleanup(c, releaseLeaked, resources{
		log:     c.log,
		conn:    conn,
		handle:  handle,
		timeout: timeout,
	})

	return c, nil
}

// handshake reads the single integer the worker sends once it is ready.
func (c *Controller) handshake(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	sig, err := frame.ReadSignal(c.conn)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}

		return &errors.ConnectionLostError{Op: "handshake", Err: err}
	}

	if sig != frame.Start {
		c.log.Warn("Unexpected handshake signal", "signal", sig.String())
	}

	c.log.Info("Worker ready")

	return nil
}

// State returns the current lifecycle state. It does not wait for an
// outstanding request.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Run asks the worker to run toolID with params. A nil params is sent as
// an empty parameter string.
func (c *Controller) Run(ctx context.Context, toolID string, params json.RawMessage) (bool, error) {
	return c.request(ctx, frame.Frame{
		Signal:  frame.StartModuleWithParameters,
		Payload: []string{toolID, string(params)},
	})
}

// SwitchModel asks the worker to open the network file at networkPath.
func (c *Controller) SwitchModel(ctx context.Context, networkPath string) (bool, error) {
	return c.request(ctx, frame.Frame{
		Signal:  frame.SwitchNetworkPath,
		Payload: []string{networkPath},
	})
}

// SaveNetworkModel asks the worker to save the open network to networkPath.
func (c *Controller) SaveNetworkModel(ctx context.Context, networkPath string) (bool, error) {
	return c.request(ctx, frame.Frame{
		Signal:  frame.SaveNetwork,
		Payload: []string{networkPath},
	})
}

func (c *Controller) request(ctx context.Context, req frame.Frame) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureWriteAvailable(); err != nil {
		return false, err
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.state.Store(int32(StateBusy))

	defer func() {
		if c.fatalErr == nil {
			c.state.Store(int32(StateConnected))
		}
	}()

	// Closing the channel is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() {
		c.log.Warn("Request cancelled, closing channel", "signal", req.Signal.String())
		_ = c.conn.Close()
	})

	c.log.Debug("Sending request", "signal", req.Signal.String(), "payload_count", len(req.Payload))

	if err := frame.Encode(c.conn, req); err != nil {
		stop()

		return false, c.lost(ctx, "write", err)
	}

	ok, err := c.awaitResponse(ctx)

	// The reply made it through, but cancellation already closed the
	// channel. The result stands; the controller does not.
	if !stop() && c.fatalErr == nil {
		c.log.Warn("Channel closed by cancellation after the reply arrived")
		_ = c.fail(&errors.ConnectionLostError{Op: "cancel", Err: ctx.Err()})
	}

	return ok, err
}

// ensureWriteAvailable reports why a request cannot be written, if it cannot.
// Caller must hold c.mu.
func (c *Controller) ensureWriteAvailable() error {
	if c.disposed {
		return errors.ErrDisposed
	}

	if c.fatalErr != nil {
		return c.fatalErr
	}

	if !c.conn.Connected() {
		return errors.ErrNotConnected
	}

	return nil
}

// awaitResponse reads replies until a terminal signal arrives.
// Caller must hold c.mu.
func (c *Controller) awaitResponse(ctx context.Context) (bool, error) {
	for {
		sig, err := frame.ReadSignal(c.conn)
		if err != nil {
			return false, c.lost(ctx, "read", err)
		}

		c.log.Debug("Received signal", "signal", sig.String())

		switch sig {
		case frame.Start:
			continue

		case frame.RunComplete, frame.RunCompleteWithParameter, frame.CheckToolExists:
			return true, nil

		case frame.SentPrintMessage:
			text, err := frame.ReadString(c.conn)
			if err != nil {
				return false, c.lost(ctx, "read", err)
			}

			c.print(text)

		case frame.RuntimeError:
			msg, err := frame.ReadString(c.conn)
			if err != nil {
				return false, c.lost(ctx, "read", err)
			}

			c.log.Debug("Worker reported a runtime error", "message", msg)

			return false, &errors.ToolRuntimeError{Message: msg}

		case frame.Termination:
			c.log.Error("Worker terminated while a request was outstanding")

			return false, c.fail(&errors.BridgeTerminatedError{})

		default:
			// Includes codes the worker declares but never handles, such as
			// ParameterError. Any payload is unread, so the stream is no
			// longer at a frame boundary.
			c.log.Error("Unknown signal from worker", "code", int32(sig))

			return false, c.fail(&errors.UnknownSignalError{Code: int32(sig)})
		}
	}
}

// lost records a channel failure. Caller must hold c.mu.
func (c *Controller) lost(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}

	c.log.Error("Connection with worker lost", "op", op, "error", err)

	return c.fail(&errors.ConnectionLostError{Op: op, Err: err})
}

// fail stores err as the fatal error and closes the channel, which can no
// longer be trusted to be at a frame boundary. Caller must hold c.mu.
func (c *Controller) fail(err error) error {
	c.fatalErr = err
	c.state.Store(int32(StateDisconnected))
	_ = c.conn.Close()

	return err
}

// Dispose sends Termination if the worker is still attached, closes the
// channel and waits for the worker to exit, killing it after the shutdown
// timeout. Calls after the first return nil and do nothing.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil
	}

	c.disposed = true
	c.state.Store(int32(StateDisposed))
	c.cleanup.Stop()

	c.log.Info("Disposing controller")

	return release(resources{
		log:     c.log,
		conn:    c.conn,
		handle:  c.handle,
		timeout: c.shutdownTimeout,
	})
}

func release(r resources) error {
	if r.conn.Connected() {
		if err := frame.WriteSignal(r.conn, frame.Termination); err != nil {
			r.log.Debug("Could not send termination", "error", err)
		}
	}

	var errs []error

	if err := r.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close channel: %w", err))
	}

	if r.handle != nil {
		if err := waitOrTerminate(r); err != nil {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

func waitOrTerminate(r resources) error {
	select {
	case <-r.handle.Exited():
		return nil
	case <-time.After(r.timeout):
	}

	r.log.Warn("Worker did not exit after termination, killing it", "pid", r.handle.Pid())

	if err := r.handle.Terminate(); err != nil {
		return err
	}

	select {
	case <-r.handle.Exited():
		return nil
	case <-time.After(r.timeout):
		return fmt.Errorf("worker (pid %d) still running after kill", r.handle.Pid())
	}
}

// releaseLeaked runs if a controller is garbage collected without Dispose.
func releaseLeaked(r resources) {
	r.log.Warn("Controller was garbage collected without Dispose; releasing worker")

	if err := release(r); err != nil {
		r.log.Warn("Releasing leaked worker failed", "error", err)
	}
}
