package errors

import (
	"errors"
	"fmt"
	"io"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*LaunchError)(nil)
	_ BridgeError = (*ConnectionLostError)(nil)
	_ BridgeError = (*ToolRuntimeError)(nil)
	_ BridgeError = (*BridgeTerminatedError)(nil)
	_ BridgeError = (*UnknownSignalError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrDisposed indicates a request was issued after Dispose.
	ErrDisposed = errors.New("bridge was invoked even though it has already been disposed")

	// ErrNotConnected indicates the channel has no attached worker.
	ErrNotConnected = errors.New("bridge channel not connected")
)

// LaunchError indicates the worker could not be started.
// It is only returned while a controller is being constructed.
type LaunchError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LaunchError) Error() string {
	msg := "launch worker"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *LaunchError) IsBridgeError() bool { return true }

// ConnectionLostError indicates the channel failed while a request was in flight.
// The controller cannot be used after this error and must be disposed.
type ConnectionLostError struct {
	// Op is the channel operation that failed ("read" or "write").
	Op  string
	Err error
}

func (e *ConnectionLostError) Error() string {
	if e.EndOfStream() {
		return "unable to communicate with the worker: stream ended before a reply was received"
	}

	return fmt.Sprintf("connection with the worker ended during %s: %v", e.Op, e.Err)
}

func (e *ConnectionLostError) Unwrap() error {
	return e.Err
}

// EndOfStream reports whether the worker closed its end without sending Termination.
func (e *ConnectionLostError) EndOfStream() bool {
	return errors.Is(e.Err, io.EOF) || errors.Is(e.Err, io.ErrUnexpectedEOF)
}

// IsBridgeError implements BridgeError.
func (e *ConnectionLostError) IsBridgeError() bool { return true }

// ToolRuntimeError carries a script failure reported by the worker.
// The controller stays usable after this error.
type ToolRuntimeError struct {
	Message string
}

func (e *ToolRuntimeError) Error() string {
	return "tool runtime error: " + e.Message
}

// IsBridgeError implements BridgeError.
func (e *ToolRuntimeError) IsBridgeError() bool { return true }

// BridgeTerminatedError indicates the worker sent Termination on its own.
type BridgeTerminatedError struct{}

func (e *BridgeTerminatedError) Error() string {
	return "the worker bridge panicked and unexpectedly shut down"
}

// IsBridgeError implements BridgeError.
func (e *BridgeTerminatedError) IsBridgeError() bool { return true }

// UnknownSignalError indicates the worker replied with a signal the
// response loop does not handle.
type UnknownSignalError struct {
	Code int32
}

func (e *UnknownSignalError) Error() string {
	return fmt.Sprintf("unknown message passed back from the worker bridge: signal number %d", e.Code)
}

// IsBridgeError implements BridgeError.
func (e *UnknownSignalError) IsBridgeError() bool { return true }
