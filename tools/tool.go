package tools

import (
	"context"
	"encoding/json"
	"path"
)

// Runner is the part of a controller a tool needs.
type Runner interface {
	Run(ctx context.Context, toolID string, params json.RawMessage) (bool, error)
	SwitchModel(ctx context.Context, networkPath string) (bool, error)
	SaveNetworkModel(ctx context.Context, networkPath string) (bool, error)
}

// Tool is one unit of work executed through a Runner.
type Tool interface {
	// Name identifies the tool in logs and progress reports.
	Name() string

	// Execute runs the tool. It returns the Runner's success flag.
	Execute(ctx context.Context, r Runner) (bool, error)
}

// Generic runs an arbitrary script with pre-encoded parameters.
type Generic struct {
	ID         string
	Parameters json.RawMessage
}

func (g Generic) Name() string { return g.ID }

func (g Generic) Execute(ctx context.Context, r Runner) (bool, error) {
	return r.Run(ctx, g.ID, g.Parameters)
}

// SwitchModel closes the current network and opens the one at Path.
type SwitchModel struct {
	Path string
}

func (s SwitchModel) Name() string { return "switch model " + s.Path }

func (s SwitchModel) Execute(ctx context.Context, r Runner) (bool, error) {
	return r.SwitchModel(ctx, s.Path)
}

// SaveProject saves the open network to Path.
type SaveProject struct {
	Path string
}

func (s SaveProject) Name() string { return "save project " + s.Path }

func (s SaveProject) Execute(ctx context.Context, r Runner) (bool, error) {
	return r.SaveNetworkModel(ctx, s.Path)
}

// scriptID joins a toolbox directory and a script path with forward
// slashes, which the worker accepts on every platform.
func scriptID(toolboxDir, script string) string {
	if toolboxDir == "" {
		return script
	}

	return path.Join(toolboxDir, script)
}

// Compile-time verification that every tool implements Tool.
var (
	_ Tool = Generic{}
	_ Tool = SwitchModel{}
	_ Tool = SaveProject{}
	_ Tool = RoadAssignment{}
	_ Tool = TransitAssignment{}
	_ Tool = ExportMatrix{}
	_ Tool = ImportNetwork{}
	_ Tool = ImportTransitSchedule{}
	_ Tool = ImportTransitNetwork{}
	_ Tool = ImportMatrixFromCSV{}
	_ Tool = CreateTrafficDemand{}
	_ Tool = CreatePublicTransitPlan{}
	_ Tool = Sequence{}
)
