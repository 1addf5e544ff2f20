package aimsunbridge

import "github.com/tmgtoolbox/aimsunbridge/internal/errors"

// Re-export error types from internal package

// LaunchError indicates the worker could not be started or never connected.
type LaunchError = errors.LaunchError

// ConnectionLostError indicates the channel to the worker failed mid-operation.
type ConnectionLostError = errors.ConnectionLostError

// ToolRuntimeError carries the message of a tool that failed inside the worker.
type ToolRuntimeError = errors.ToolRuntimeError

// BridgeTerminatedError indicates the worker shut down while a request was outstanding.
type BridgeTerminatedError = errors.BridgeTerminatedError

// UnknownSignalError indicates the worker answered with a signal the controller
// does not handle. The controller is unusable afterwards.
type UnknownSignalError = errors.UnknownSignalError

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// Re-export sentinel errors from internal package.
var (
	// ErrDisposed indicates the controller was used after Dispose.
	ErrDisposed = errors.ErrDisposed

	// ErrNotConnected indicates the worker is not attached to the channel.
	ErrNotConnected = errors.ErrNotConnected
)
