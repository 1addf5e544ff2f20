package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	target string
	params string
}

// recordingRunner records every request and answers from results in order,
// defaulting to success.
type recordingRunner struct {
	calls   []call
	results []bool
	errs    map[int]error
}

func (r *recordingRunner) answer(c call) (bool, error) {
	i := len(r.calls)
	r.calls = append(r.calls, c)

	if err := r.errs[i]; err != nil {
		return false, err
	}

	if i < len(r.results) {
		return r.results[i], nil
	}

	return true, nil
}

func (r *recordingRunner) Run(_ context.Context, toolID string, params json.RawMessage) (bool, error) {
	return r.answer(call{op: "run", target: toolID, params: string(params)})
}

func (r *recordingRunner) SwitchModel(_ context.Context, p string) (bool, error) {
	return r.answer(call{op: "switch", target: p})
}

func (r *recordingRunner) SaveNetworkModel(_ context.Context, p string) (bool, error) {
	return r.answer(call{op: "save", target: p})
}

func TestTools_Requests(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
		want call
	}{
		{
			name: "generic",
			tool: Generic{ID: "custom.py", Parameters: json.RawMessage(`{"a":1}`)},
			want: call{op: "run", target: "custom.py", params: `{"a":1}`},
		},
		{
			name: "generic without parameters",
			tool: Generic{ID: "custom.py"},
			want: call{op: "run", target: "custom.py"},
		},
		{
			name: "switch model",
			tool: SwitchModel{Path: "models/b.ang"},
			want: call{op: "switch", target: "models/b.ang"},
		},
		{
			name: "save project",
			tool: SaveProject{Path: "out/a.ang"},
			want: call{op: "save", target: "out/a.ang"},
		},
		{
			name: "road assignment with defaults",
			tool: RoadAssignment{AssignmentParams{ToolboxDir: "toolbox", NetworkDirectory: "net"}},
			want: call{
				op:     "run",
				target: "toolbox/assignment/roadAssignment.py",
				params: `{"ModelDirectory":"net","autoDemand":"testOD","transitDemand":"transitOD","Start":"360","Duration":"180"}`,
			},
		},
		{
			name: "transit assignment",
			tool: TransitAssignment{AssignmentParams{
				NetworkDirectory: "net", AutoDemand: "am", TransitDemand: "pt", StartTime: "0", DurationTime: "60",
			}},
			want: call{
				op:     "run",
				target: "assignment/transitAssignment.py",
				params: `{"ModelDirectory":"net","autoDemand":"am","transitDemand":"pt","Start":"0","Duration":"60"}`,
			},
		},
		{
			name: "export transit matrix",
			tool: ExportMatrix{Scenario: TransitScenario, FilePath: "out/", Format: TXT, MatrixName: "skim"},
			want: call{
				op:     "run",
				target: "InputOutput/exportMatrix.py",
				params: `{"ScenarioType":"MacroPTExperiment","FilePath":"out/","Format":"txt","MatrixName":"skim"}`,
			},
		},
		{
			name: "export defaults to csv",
			tool: ExportMatrix{FilePath: "out/", MatrixName: "od"},
			want: call{
				op:     "run",
				target: "InputOutput/exportMatrix.py",
				params: `{"ScenarioType":"MacroExperiment","FilePath":"out/","Format":"csv","MatrixName":"od"}`,
			},
		},
		{
			name: "import network",
			tool: ImportNetwork{NetworkPackageFile: "Frabitztown.nwp"},
			want: call{
				op:     "run",
				target: "inputOutput/importNetwork.py",
				params: `{"NetworkPackageFile":"Frabitztown.nwp"}`,
			},
		},
		{
			name: "import transit schedule",
			tool: ImportTransitSchedule{NetworkPackageFile: "a.nwp", ServiceTableCSV: "s.csv"},
			want: call{
				op:     "run",
				target: "InputOutput/importTransitSchedule.py",
				params: `{"NetworkPackageFile":"a.nwp","ServiceTableCSV":"s.csv"}`,
			},
		},
		{
			name: "import transit network",
			tool: ImportTransitNetwork{ToolboxDir: "toolbox", NetworkDirectory: "net"},
			want: call{
				op:     "run",
				target: "toolbox/inputOutput/importTransitNetwork.py",
				params: `{"ModelDirectory":"net"}`,
			},
		},
		{
			name: "import matrix with defaults",
			tool: NewImportMatrixFromCSV("od.csv"),
			want: call{
				op:     "run",
				target: "inputOutput/ImportMatrixFromCSVThirdNormalized.py",
				params: `{"ODCSV":"od.csv","ThirdNormalized":true,"IncludesHeader":true,"MatrixID":"testOD",` +
					`"CentroidConfiguration":"baseCentroidConfig","VehicleType":"Car Class ",` +
					`"InitialTime":"06:00:00:000","DurationTime":"03:00:00:000"}`,
			},
		},
		{
			name: "import matrix without header",
			tool: ImportMatrixFromCSV{ODCSV: "od.csv", ThirdNormalized: true, MatrixID: "amOD", VehicleType: "Truck"},
			want: call{
				op:     "run",
				target: "inputOutput/ImportMatrixFromCSVThirdNormalized.py",
				params: `{"ODCSV":"od.csv","ThirdNormalized":true,"IncludesHeader":false,"MatrixID":"amOD",` +
					`"CentroidConfiguration":"baseCentroidConfig","VehicleType":"Truck",` +
					`"InitialTime":"06:00:00:000","DurationTime":"03:00:00:000"}`,
			},
		},
		{
			name: "create traffic demand",
			tool: CreateTrafficDemand{DemandName: "AM", Slices: []DemandSlice{
				{ODMatrix: "autoOD", InitialTime: 360, Duration: 180},
				{ODMatrix: "truckOD", InitialTime: 360, Duration: 90.5},
			}},
			want: call{
				op:     "run",
				target: "assignment/createTrafficDemand.py",
				params: `{"demandObjectName":"AM","demandParams":[` +
					`{"NameODMatrix":"autoOD","InitialTime":360,"Duration":180},` +
					`{"NameODMatrix":"truckOD","InitialTime":360,"Duration":90.5}]}`,
			},
		},
		{
			name: "create public transit plan",
			tool: CreatePublicTransitPlan{PlanName: "PT plan"},
			want: call{
				op:     "run",
				target: "assignment/createPublicTransitPlan.py",
				params: `{"NameOfPlan":"PT plan"}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRunner{}

			ok, err := tt.tool.Execute(context.Background(), r)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []call{tt.want}, r.calls)
		})
	}
}

func TestExportMatrix_RejectsUnknownValues(t *testing.T) {
	r := &recordingRunner{}

	_, err := ExportMatrix{Scenario: ScenarioType(9)}.Execute(context.Background(), r)
	require.ErrorContains(t, err, "scenario type")

	_, err = ExportMatrix{Format: "xlsx"}.Execute(context.Background(), r)
	require.ErrorContains(t, err, "file format")

	require.Empty(t, r.calls, "nothing reaches the worker")
}

func TestCreateTrafficDemand_RequiresAMatrix(t *testing.T) {
	r := &recordingRunner{}

	_, err := CreateTrafficDemand{DemandName: "AM"}.Execute(context.Background(), r)
	require.ErrorContains(t, err, "at least one OD matrix")
	require.Empty(t, r.calls)
}

func TestSequence_RunsInOrderAndReportsProgress(t *testing.T) {
	r := &recordingRunner{}

	type progress struct {
		done, total int
		name        string
	}

	var seen []progress

	seq := Sequence{
		Tools: []Tool{
			ImportNetwork{NetworkPackageFile: "a.nwp"},
			SwitchModel{Path: "b.ang"},
			SaveProject{Path: "c.ang"},
		},
		Progress: func(done, total int, name string) {
			seen = append(seen, progress{done, total, name})
		},
	}

	ok, err := seq.Execute(context.Background(), r)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, r.calls, 3)
	assert.Equal(t, "run", r.calls[0].op)
	assert.Equal(t, "switch", r.calls[1].op)
	assert.Equal(t, "save", r.calls[2].op)

	require.Equal(t, []progress{
		{0, 3, ImportNetworkScript},
		{1, 3, "switch model b.ang"},
		{2, 3, "save project c.ang"},
		{3, 3, ""},
	}, seen)
}

func TestSequence_StopsWhenStepReturnsFalse(t *testing.T) {
	r := &recordingRunner{results: []bool{true, false, true}}

	seq := Sequence{Tools: []Tool{
		Generic{ID: "one.py"}, Generic{ID: "two.py"}, Generic{ID: "three.py"},
	}}

	ok, err := seq.Execute(context.Background(), r)
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, r.calls, 2)
}

func TestSequence_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	r := &recordingRunner{errs: map[int]error{1: boom}}

	seq := Sequence{Tools: []Tool{
		Generic{ID: "one.py"}, Generic{ID: "two.py"}, Generic{ID: "three.py"},
	}}

	ok, err := seq.Execute(context.Background(), r)
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.Contains(t, err.Error(), "step 2/3 (two.py)")
	require.Len(t, r.calls, 2)
}

func TestSequence_EmptySucceeds(t *testing.T) {
	ok, err := Sequence{}.Execute(context.Background(), &recordingRunner{})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSequence_Name(t *testing.T) {
	seq := Sequence{Tools: []Tool{Generic{ID: "a.py"}, SaveProject{Path: "x.ang"}}}
	require.Equal(t, "sequence [a.py, save project x.ang]", seq.Name())
}
