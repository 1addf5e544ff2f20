package tools

import (
	"context"
	"fmt"

	"github.com/tmgtoolbox/aimsunbridge/internal/params"
)

// Script identifiers of the assignment tools.
const (
	RoadAssignmentScript          = "assignment/roadAssignment.py"
	TransitAssignmentScript       = "assignment/transitAssignment.py"
	CreateTrafficDemandScript     = "assignment/createTrafficDemand.py"
	CreatePublicTransitPlanScript = "assignment/createPublicTransitPlan.py"
)

// Assignment defaults used when a field is left empty.
const (
	DefaultAutoDemand    = "testOD"
	DefaultTransitDemand = "transitOD"
	DefaultStartTime     = "360"
	DefaultDurationTime  = "180"
)

// AssignmentParams are shared by the road and transit assignment tools.
type AssignmentParams struct {
	// ToolboxDir is prefixed to the script identifier when set.
	ToolboxDir string `json:"toolbox_dir"`

	NetworkDirectory string `json:"network_directory"`
	AutoDemand       string `json:"auto_demand"`
	TransitDemand    string `json:"transit_demand"`

	// StartTime and DurationTime are in seconds.
	StartTime    string `json:"start_time"`
	DurationTime string `json:"duration_time"`
}

func (p AssignmentParams) execute(ctx context.Context, r Runner, script string) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("ModelDirectory", p.NetworkDirectory)
		w.Field("autoDemand", orDefault(p.AutoDemand, DefaultAutoDemand))
		w.Field("transitDemand", orDefault(p.TransitDemand, DefaultTransitDemand))
		w.Field("Start", orDefault(p.StartTime, DefaultStartTime))
		w.Field("Duration", orDefault(p.DurationTime, DefaultDurationTime))
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, scriptID(p.ToolboxDir, script), raw)
}

// RoadAssignment generates a road assignment.
type RoadAssignment struct {
	AssignmentParams
}

func (RoadAssignment) Name() string { return RoadAssignmentScript }

func (a RoadAssignment) Execute(ctx context.Context, r Runner) (bool, error) {
	return a.execute(ctx, r, RoadAssignmentScript)
}

// TransitAssignment generates a transit assignment.
type TransitAssignment struct {
	AssignmentParams
}

func (TransitAssignment) Name() string { return TransitAssignmentScript }

func (a TransitAssignment) Execute(ctx context.Context, r Runner) (bool, error) {
	return a.execute(ctx, r, TransitAssignmentScript)
}

// DemandSlice is one OD matrix contributing to a traffic demand.
// Times are in minutes.
type DemandSlice struct {
	ODMatrix    string  `json:"od_matrix"`
	InitialTime float64 `json:"initial_time"`
	Duration    float64 `json:"duration"`
}

// CreateTrafficDemand creates a traffic demand object from OD matrices.
type CreateTrafficDemand struct {
	DemandName string        `json:"demand_name"`
	Slices     []DemandSlice `json:"slices"`
}

func (CreateTrafficDemand) Name() string { return CreateTrafficDemandScript }

func (d CreateTrafficDemand) Execute(ctx context.Context, r Runner) (bool, error) {
	if len(d.Slices) == 0 {
		return false, fmt.Errorf("traffic demand %q needs at least one OD matrix", d.DemandName)
	}

	raw, err := params.Build(func(w *params.Writer) {
		w.Field("demandObjectName", d.DemandName)
		w.Array("demandParams", func(e *params.Elements) {
			for _, s := range d.Slices {
				e.Object(func(w *params.Writer) {
					w.Field("NameODMatrix", s.ODMatrix)
					w.Field("InitialTime", s.InitialTime)
					w.Field("Duration", s.Duration)
				})
			}
		})
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, CreateTrafficDemandScript, raw)
}

// CreatePublicTransitPlan creates an empty public transit plan.
type CreatePublicTransitPlan struct {
	PlanName string `json:"plan_name"`
}

func (CreatePublicTransitPlan) Name() string { return CreatePublicTransitPlanScript }

func (p CreatePublicTransitPlan) Execute(ctx context.Context, r Runner) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("NameOfPlan", p.PlanName)
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, CreatePublicTransitPlanScript, raw)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
