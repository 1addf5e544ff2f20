package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Step kinds understood in a session file.
const (
	StepRun         = "run"
	StepSwitchModel = "switch_model"
	StepSaveProject = "save_project"
	StepTool        = "tool"
)

// Session is a worker definition plus the ordered steps to run against it.
type Session struct {
	Worker Options
	Steps  []Step
}

// Step is one entry of [[steps]].
type Step struct {
	Kind       string         `toml:"kind"`
	Tool       string         `toml:"tool"`
	Path       string         `toml:"path"`
	Parameters map[string]any `toml:"parameters"`

	// ParameterOrder lists the keys of Parameters in file order.
	ParameterOrder []string `toml:"-"`
}

type workerSection struct {
	Executable       string `toml:"executable"`
	InstallDir       string `toml:"install_dir"`
	BridgeScript     string `toml:"bridge_script"`
	ProjectFile      string `toml:"project_file"`
	ProjectExtension string `toml:"project_extension"`
	PipeName         string `toml:"pipe_name"`
	ShutdownTimeout  string `toml:"shutdown_timeout"`
}

type fileSession struct {
	Worker workerSection `toml:"worker"`
	Steps  []Step        `toml:"steps"`
}

// LoadSession reads a TOML session file.
func LoadSession(path string) (*Session, error) {
	var raw fileSession

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load session %s: unknown key %q", path, undecoded[0].String())
	}

	s := &Session{
		Worker: Options{
			Executable:       strings.TrimSpace(raw.Worker.Executable),
			InstallDir:       strings.TrimSpace(raw.Worker.InstallDir),
			BridgeScript:     strings.TrimSpace(raw.Worker.BridgeScript),
			ProjectFile:      strings.TrimSpace(raw.Worker.ProjectFile),
			ProjectExtension: strings.TrimSpace(raw.Worker.ProjectExtension),
			PipeName:         strings.TrimSpace(raw.Worker.PipeName),
		},
		Steps: raw.Steps,
	}

	recordParameterOrder(meta, s.Steps)

	if meta.IsDefined("worker", "shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Worker.ShutdownTimeout))
		if err != nil {
			return nil, fmt.Errorf("parse worker.shutdown_timeout: %w", err)
		}

		s.Worker.ShutdownTimeout = d
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// recordParameterOrder walks the decoded keys in file order. Each [[steps]]
// header starts a new step; keys under its parameters table belong to it.
func recordParameterOrder(meta toml.MetaData, steps []Step) {
	idx := -1

	for _, key := range meta.Keys() {
		switch {
		case len(key) == 1 && key[0] == "steps":
			idx++
		case len(key) == 3 && key[0] == "steps" && key[1] == "parameters":
			if idx >= 0 && idx < len(steps) {
				steps[idx].ParameterOrder = append(steps[idx].ParameterOrder, key[2])
			}
		}
	}
}

// Validate checks the parts of a session that can be checked without
// touching the filesystem.
func (s *Session) Validate() error {
	if s.Worker.Executable == "" {
		return fmt.Errorf("session missing worker.executable")
	}

	if s.Worker.ProjectFile == "" {
		return fmt.Errorf("session missing worker.project_file")
	}

	if s.Worker.ShutdownTimeout < 0 {
		return fmt.Errorf("worker.shutdown_timeout must not be negative")
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("steps[%d] invalid: %w", i, err)
		}
	}

	return nil
}

func (st Step) validate() error {
	switch st.Kind {
	case StepRun, StepTool:
		if strings.TrimSpace(st.Tool) == "" {
			return fmt.Errorf("%s step missing tool", st.Kind)
		}
	case StepSwitchModel, StepSaveProject:
		if strings.TrimSpace(st.Path) == "" {
			return fmt.Errorf("%s step missing path", st.Kind)
		}

		if len(st.Parameters) > 0 {
			return fmt.Errorf("%s step does not take parameters", st.Kind)
		}
	default:
		return fmt.Errorf("unknown step kind %q", st.Kind)
	}

	return nil
}
