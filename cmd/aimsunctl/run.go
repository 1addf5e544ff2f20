package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmgtoolbox/aimsunbridge"
	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/tools"
)

// errIncomplete is returned when the worker answers without running a step.
var errIncomplete = errors.New("worker did not complete the step")

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every step of the session in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}

			steps, err := buildTools(s.Steps)
			if err != nil {
				return err
			}

			seq := tools.Sequence{
				Tools: steps,
				Progress: func(done, total int, name string) {
					if name == "" {
						a.log.Info("Session finished", "steps", total)

						return
					}

					a.log.Info("Running step", "step", done+1, "of", total, "tool", name)
				},
			}

			return a.execute(cmd.Context(), s, seq)
		},
	}
}

func newToolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tool <script> [parameters-json]",
		Short: "Run a single toolbox script",
		Long: `Run a single toolbox script against the worker described by the
session file. The session's steps are ignored.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage

			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("parameters for %s are not valid JSON", args[0])
				}

				raw = json.RawMessage(args[1])
			}

			s, err := a.loadSession()
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), s, tools.Generic{ID: args[0], Parameters: raw})
		},
	}
}

// execute starts a controller for the session and runs t against it.
func (a *app) execute(ctx context.Context, s *config.Session, t tools.Tool) error {
	return aimsunbridge.WithController(ctx, func(c aimsunbridge.Controller) error {
		ok, err := t.Execute(ctx, c)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%s: %w", t.Name(), errIncomplete)
		}

		return nil
	}, a.controllerOptions(s)...)
}
