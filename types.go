package aimsunbridge

import (
	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/internal/controller"
	"github.com/tmgtoolbox/aimsunbridge/internal/frame"
	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// ===== Options and Configuration =====

// Options holds everything needed to start a worker and a controller for it.
type Options = config.Options

// PrintSink receives print output produced by worker tools.
type PrintSink = config.PrintSink

// ProjectValidator checks a project file before the worker is launched.
type ProjectValidator = worker.ProjectValidator

// Launcher starts the worker process against a channel address.
type Launcher = worker.Launcher

// Handle controls a started worker process.
type Handle = worker.Handle

// DefaultShutdownTimeout is how long Dispose waits for the worker to exit.
const DefaultShutdownTimeout = config.DefaultShutdownTimeout

// DefaultProjectExtension is the project file extension accepted by default.
const DefaultProjectExtension = worker.DefaultProjectExtension

// ===== Protocol =====

// Signal is the integer tag that opens every frame on the channel.
type Signal = frame.Signal

// Signals exchanged with the worker.
const (
	SignalStart                     = frame.Start
	SignalTermination               = frame.Termination
	SignalRunComplete               = frame.RunComplete
	SignalParameterError            = frame.ParameterError
	SignalRuntimeError              = frame.RuntimeError
	SignalProgressReport            = frame.ProgressReport
	SignalRunCompleteWithParameter  = frame.RunCompleteWithParameter
	SignalCheckToolExists           = frame.CheckToolExists
	SignalToolDoesNotExistError     = frame.ToolDoesNotExistError
	SignalSentPrintMessage          = frame.SentPrintMessage
	SignalStartModuleWithParameters = frame.StartModuleWithParameters
	SignalIncompatibleTool          = frame.IncompatibleTool
	SignalSwitchNetworkPath         = frame.SwitchNetworkPath
	SignalSaveNetwork               = frame.SaveNetwork
)

// ===== Controller State =====

// State is the lifecycle state of a controller.
type State = controller.State

// Controller states.
const (
	StateDisconnected = controller.StateDisconnected
	StateConnected    = controller.StateConnected
	StateBusy         = controller.StateBusy
	StateDisposed     = controller.StateDisposed
)
