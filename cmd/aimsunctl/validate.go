package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the session file and project without starting the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}

			if err := worker.ValidateExecutable(s.Worker.Executable); err != nil {
				return err
			}

			ext := s.Worker.ProjectExtension
			if ext == "" {
				ext = worker.DefaultProjectExtension
			}

			if err := worker.ValidateProject(s.Worker.ProjectFile, ext); err != nil {
				return err
			}

			if _, err := buildTools(s.Steps); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d steps)\n", a.configPath, len(s.Steps))

			return nil
		},
	}
}
