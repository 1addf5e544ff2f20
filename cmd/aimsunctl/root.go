package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmgtoolbox/aimsunbridge"
	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/tools"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "aimsunctl",
		Short: "Run Aimsun toolbox scripts through a bridge worker",
		Long: `aimsunctl starts the Aimsun console with the bridge script, opens the
project named in the session file and runs toolbox scripts against it.

The session file is TOML:

  [worker]
  executable   = "C:/Program Files/Aimsun/Aimsun Next 22/aconsole.exe"
  project_file = "Frabitztown.ang"

  [[steps]]
  kind = "run"
  tool = "inputOutput/importNetwork.py"
  [steps.parameters]
  NetworkPackageFile = "Frabitztown.nwp"

  [[steps]]
  kind = "tool"
  tool = "road_assignment"
  [steps.parameters]
  network_directory = "Frabitztown"

Steps of kind "run" send a raw script identifier. Steps of kind "tool" name
one of the typed tools (` + strings.Join(tools.Names(), ", ") + `) and take its
fields as parameters. Steps of kind "switch_model" and "save_project" take a path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}

			a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

			return nil
		},
	}

	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "aimsun.toml", "session file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log frame traffic and worker output")

	root.AddCommand(newRunCmd(a), newToolCmd(a), newValidateCmd(a))

	return root
}

func (a *app) loadSession() (*config.Session, error) {
	s, err := config.LoadSession(a.configPath)
	if err != nil {
		return nil, err
	}

	a.log.Debug("Loaded session", "path", a.configPath, "steps", len(s.Steps))

	return s, nil
}

// controllerOptions turns the [worker] section into controller options.
func (a *app) controllerOptions(s *config.Session) []aimsunbridge.Option {
	w := s.Worker

	opts := []aimsunbridge.Option{
		aimsunbridge.WithLogger(a.log),
		aimsunbridge.WithPrintSink(func(text string) { fmt.Fprintln(a.out, text) }),
		aimsunbridge.WithExecutable(w.Executable),
		aimsunbridge.WithProjectFile(w.ProjectFile),
	}

	if w.InstallDir != "" {
		opts = append(opts, aimsunbridge.WithInstallDir(w.InstallDir))
	}

	if w.BridgeScript != "" {
		opts = append(opts, aimsunbridge.WithBridgeScript(w.BridgeScript))
	}

	if w.ProjectExtension != "" {
		opts = append(opts, aimsunbridge.WithProjectExtension(w.ProjectExtension))
	}

	if w.PipeName != "" {
		opts = append(opts, aimsunbridge.WithPipeName(w.PipeName))
	}

	if w.ShutdownTimeout > 0 {
		opts = append(opts, aimsunbridge.WithShutdownTimeout(w.ShutdownTimeout))
	}

	return opts
}
