package aimsunbridge

import (
	"context"
	"encoding/json"

	"github.com/tmgtoolbox/aimsunbridge/internal/controller"
	"github.com/tmgtoolbox/aimsunbridge/tools"
)

// Controller drives one worker process over a private channel.
//
// Requests are synchronous: each call writes its frame and blocks until the
// worker sends a terminal reply. Concurrent callers are serialised, so at
// most one request is ever outstanding. Cancelling a call's context closes
// the channel; the controller then fails every later request and must be
// disposed.
//
// Lifecycle: controllers are single-use. After Dispose, create a new one
// with New.
//
// Example usage:
//
//	c, err := aimsunbridge.New(ctx,
//	    aimsunbridge.WithExecutable(`C:\Program Files\Aimsun\aconsole.exe`),
//	    aimsunbridge.WithProjectFile("Frabitztown.ang"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Dispose()
//
//	ok, err := c.Run(ctx, "inputOutput/importNetwork.py", params)
type Controller interface {
	// Run asks the worker to run the tool script toolID with params.
	// A nil params is sent as an empty parameter string.
	// Returns ToolRuntimeError if the tool failed inside the worker.
	Run(ctx context.Context, toolID string, params json.RawMessage) (bool, error)

	// SwitchModel asks the worker to open the network file at networkPath.
	SwitchModel(ctx context.Context, networkPath string) (bool, error)

	// SaveNetworkModel asks the worker to save the open network to networkPath.
	SaveNetworkModel(ctx context.Context, networkPath string) (bool, error)

	// State returns the current lifecycle state without waiting for an
	// outstanding request.
	State() State

	// Dispose shuts the worker down and releases the channel.
	// Safe to call more than once.
	Dispose() error
}

// Compile-time verification that the implementation satisfies Controller
// and can drive tools.
var (
	_ Controller   = (*controller.Controller)(nil)
	_ tools.Runner = Controller(nil)
)

// New validates the project, creates the channel, launches the worker and
// waits for its handshake.
//
// Returns LaunchError if the project is invalid, the worker cannot be
// started or exits before connecting; ConnectionLostError if the channel
// fails during the handshake.
func New(ctx context.Context, opts ...Option) (Controller, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := controller.Open(ctx, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return c, nil
}
