package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tmgtoolbox/aimsunbridge/internal/errors"
)

const (
	// DefaultProjectExtension is the extension an Aimsun project file must carry.
	DefaultProjectExtension = ".ang"

	// DefaultBridgeScript is the script name looked up next to the running binary
	// when no explicit bridge script is configured.
	DefaultBridgeScript = "AimsunBridge.py"
)

// ProjectValidator checks a project file before anything is spawned.
type ProjectValidator func(path string) error

// Config holds everything needed to start the worker.
type Config struct {
	// Executable is the worker binary (aconsole).
	Executable string

	// InstallDir is the working directory of the worker. Defaults to the
	// directory that contains Executable.
	InstallDir string

	// BridgeScript is the script the worker runs to speak the protocol.
	// Defaults to DefaultBridgeScript next to the running binary.
	BridgeScript string

	// ProjectFile is the network file the worker opens at startup.
	ProjectFile string

	// Validator checks ProjectFile. Defaults to ExtensionValidator(DefaultProjectExtension).
	Validator ProjectValidator

	// Logger receives launch diagnostics and worker output.
	Logger *slog.Logger
}

// Launcher starts the worker process.
type Launcher interface {
	// Launch validates the configuration and starts the worker, passing it
	// the channel address. It does not wait for the worker to connect.
	Launch(ctx context.Context, addr string) (Handle, error)
}

// launcher implements the Launcher interface.
type launcher struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that launcher implements Launcher.
var _ Launcher = (*launcher)(nil)

// NewLauncher creates a Launcher for cfg.
func NewLauncher(cfg *Config) Launcher {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &launcher{
		cfg: cfg,
		log: log.With("component", "launcher"),
	}
}

// ExtensionValidator returns a validator that requires an existing regular
// file whose extension matches ext (case-insensitive).
func ExtensionValidator(ext string) ProjectValidator {
	return func(path string) error {
		return ValidateProject(path, ext)
	}
}

// ValidateProject checks that path names an existing file with extension ext.
func ValidateProject(path, ext string) error {
	if path == "" {
		return &errors.LaunchError{Reason: "project file path is empty"}
	}

	if !strings.EqualFold(filepath.Ext(path), ext) {
		return &errors.LaunchError{
			Path:   path,
			Reason: fmt.Sprintf("project file must have the %s extension", ext),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &errors.LaunchError{Path: path, Reason: "the project file doesn't exist", Err: err}
	}

	if info.IsDir() {
		return &errors.LaunchError{Path: path, Reason: "the project file is a directory"}
	}

	return nil
}

// BuildArgs returns the worker command line after the executable.
func BuildArgs(bridgeScript, addr, projectFile string) []string {
	return []string{"-script", bridgeScript, addr, projectFile}
}

// Launch starts the worker.
//
// The project file is validated first; LaunchError is returned before any
// process is spawned if it is missing or has the wrong extension. A failure
// to start the process is returned as LaunchError wrapping the OS error.
func (l *launcher) Launch(_ context.Context, addr string) (Handle, error) {
	validate := l.cfg.Validator
	if validate == nil {
		validate = ExtensionValidator(DefaultProjectExtension)
	}

	if err := validate(l.cfg.ProjectFile); err != nil {
		l.log.Error("Project file rejected", "project_file", l.cfg.ProjectFile, "error", err)

		return nil, err
	}

	exe, err := l.findExecutable()
	if err != nil {
		return nil, err
	}

	script, err := l.bridgeScript()
	if err != nil {
		return nil, err
	}

	dir := l.cfg.InstallDir
	if dir == "" {
		dir = filepath.Dir(exe)
	}

	args := BuildArgs(script, addr, l.cfg.ProjectFile)
	l.log.Debug("Built worker arguments", "executable", exe, "args", args, "dir", dir)

	// The worker outlives the call that launched it, so it is not bound to ctx.
	//nolint:gosec // G204: the worker executable and its arguments come from configuration
	cmd := exec.Command(exe, args...)
	cmd.Dir = dir

	p := newProcess(l.log, cmd)
	if err := p.start(); err != nil {
		l.log.Error("Failed to start worker process", "error", err)

		return nil, &errors.LaunchError{Path: exe, Reason: "start worker process", Err: err}
	}

	l.log.Info("Worker process started", "pid", p.Pid())

	return p, nil
}

func (l *launcher) findExecutable() (string, error) {
	if err := ValidateExecutable(l.cfg.Executable); err != nil {
		l.log.Debug("Worker executable rejected", "executable", l.cfg.Executable, "error", err)

		return "", err
	}

	return l.cfg.Executable, nil
}

// ValidateExecutable checks that exe names an existing file.
func ValidateExecutable(exe string) error {
	if exe == "" {
		return &errors.LaunchError{Reason: "worker executable path is empty"}
	}

	info, err := os.Stat(exe)
	if err != nil {
		return &errors.LaunchError{Path: exe, Reason: "worker executable not found", Err: err}
	}

	if info.IsDir() {
		return &errors.LaunchError{Path: exe, Reason: "worker executable is a directory"}
	}

	return nil
}

func (l *launcher) bridgeScript() (string, error) {
	if l.cfg.BridgeScript != "" {
		return l.cfg.BridgeScript, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", &errors.LaunchError{Reason: "locate bridge script", Err: err}
	}

	return filepath.Join(filepath.Dir(self), DefaultBridgeScript), nil
}
