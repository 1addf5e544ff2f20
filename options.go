package aimsunbridge

import (
	"log/slog"
	"time"

	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithPrintSink sets where print output from worker tools goes.
// Defaults to standard output.
func WithPrintSink(sink PrintSink) Option {
	return func(o *Options) {
		o.PrintSink = sink
	}
}

// WithShutdownTimeout bounds how long Dispose waits for the worker to exit
// before killing it.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

// ===== Worker =====

// WithExecutable sets the path to the worker console executable.
func WithExecutable(path string) Option {
	return func(o *Options) {
		o.Executable = path
	}
}

// WithInstallDir sets the worker's working directory.
// Defaults to the directory holding the executable.
func WithInstallDir(dir string) Option {
	return func(o *Options) {
		o.InstallDir = dir
	}
}

// WithBridgeScript sets the script the worker runs to serve the channel.
// Defaults to AimsunBridge.py next to the running program.
func WithBridgeScript(path string) Option {
	return func(o *Options) {
		o.BridgeScript = path
	}
}

// WithProjectFile sets the project the worker opens on start.
func WithProjectFile(path string) Option {
	return func(o *Options) {
		o.ProjectFile = path
	}
}

// WithProjectExtension changes the extension a project file must carry.
// Ignored when WithProjectValidator is also given.
func WithProjectExtension(ext string) Option {
	return func(o *Options) {
		o.ProjectExtension = ext
	}
}

// WithProjectValidator replaces the default project file check.
func WithProjectValidator(v ProjectValidator) Option {
	return func(o *Options) {
		o.ProjectValidator = v
	}
}

// ===== Channel =====

// WithPipeName sets the channel name. Defaults to a fresh ULID.
func WithPipeName(name string) Option {
	return func(o *Options) {
		o.PipeName = name
	}
}

// WithLauncher replaces how the worker process is started.
// When set, the worker options above are not consulted.
func WithLauncher(l Launcher) Option {
	return func(o *Options) {
		o.Launcher = l
	}
}

// ExtensionValidator returns a ProjectValidator that requires ext.
func ExtensionValidator(ext string) ProjectValidator {
	return worker.ExtensionValidator(ext)
}
