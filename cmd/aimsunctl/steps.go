package main

import (
	"fmt"

	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/internal/params"
	"github.com/tmgtoolbox/aimsunbridge/tools"
)

// buildTools converts session steps into tools, keeping each step's
// parameters in file order.
func buildTools(steps []config.Step) ([]tools.Tool, error) {
	out := make([]tools.Tool, 0, len(steps))

	for i, st := range steps {
		switch st.Kind {
		case config.StepRun:
			raw, err := params.FromMap(st.Parameters, st.ParameterOrder...)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}

			out = append(out, tools.Generic{ID: st.Tool, Parameters: raw})

		case config.StepTool:
			raw, err := params.FromMap(st.Parameters, st.ParameterOrder...)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}

			t, err := tools.Decode(st.Tool, raw)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}

			out = append(out, t)

		case config.StepSwitchModel:
			out = append(out, tools.SwitchModel{Path: st.Path})

		case config.StepSaveProject:
			out = append(out, tools.SaveProject{Path: st.Path})

		default:
			return nil, fmt.Errorf("steps[%d]: unknown step kind %q", i, st.Kind)
		}
	}

	return out, nil
}
