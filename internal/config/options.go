package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// DefaultShutdownTimeout is how long Dispose waits for the worker to exit
// after sending Termination before it kills the process.
const DefaultShutdownTimeout = 5 * time.Second

// PrintSink receives console output forwarded by the worker.
type PrintSink func(text string)

// StdoutSink writes worker output to standard output unchanged.
func StdoutSink(text string) {
	fmt.Fprint(os.Stdout, text)
}

// Options configures a bridge controller.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// PrintSink receives SentPrintMessage payloads. Defaults to StdoutSink.
	PrintSink PrintSink

	// Executable is the path to the worker binary (aconsole).
	Executable string

	// InstallDir is the worker's working directory. Defaults to the
	// directory containing Executable.
	InstallDir string

	// BridgeScript is the protocol script the worker runs.
	BridgeScript string

	// ProjectFile is the network file opened when the worker starts.
	ProjectFile string

	// ProjectExtension is the extension ProjectFile must carry.
	// Defaults to ".ang".
	ProjectExtension string

	// ProjectValidator overrides the default existence and extension check.
	ProjectValidator worker.ProjectValidator

	// PipeName names the channel. Defaults to a fresh ULID.
	PipeName string

	// ShutdownTimeout bounds the wait for the worker to exit on Dispose.
	ShutdownTimeout time.Duration

	// Launcher replaces the process launcher, e.g. in tests.
	Launcher worker.Launcher
}

// WorkerConfig derives the launcher configuration from o.
func (o *Options) WorkerConfig(log *slog.Logger) *worker.Config {
	validate := o.ProjectValidator
	if validate == nil {
		ext := o.ProjectExtension
		if ext == "" {
			ext = worker.DefaultProjectExtension
		}

		validate = worker.ExtensionValidator(ext)
	}

	return &worker.Config{
		Executable:   o.Executable,
		InstallDir:   o.InstallDir,
		BridgeScript: o.BridgeScript,
		ProjectFile:  o.ProjectFile,
		Validator:    validate,
		Logger:       log,
	}
}
