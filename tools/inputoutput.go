package tools

import (
	"context"
	"fmt"

	"github.com/tmgtoolbox/aimsunbridge/internal/params"
)

// Script identifiers of the input/output tools.
const (
	ExportMatrixScript          = "InputOutput/exportMatrix.py"
	ImportNetworkScript         = "inputOutput/importNetwork.py"
	ImportTransitNetworkScript  = "inputOutput/importTransitNetwork.py"
	ImportTransitScheduleScript = "InputOutput/importTransitSchedule.py"
	ImportMatrixFromCSVScript   = "inputOutput/ImportMatrixFromCSVThirdNormalized.py"
)

// ScenarioType selects the experiment a matrix belongs to.
type ScenarioType int

const (
	RoadScenario ScenarioType = iota
	TransitScenario
)

// experiment returns the worker's object type for the scenario.
func (s ScenarioType) experiment() (string, error) {
	switch s {
	case RoadScenario:
		return "MacroExperiment", nil
	case TransitScenario:
		return "MacroPTExperiment", nil
	default:
		return "", fmt.Errorf("unknown scenario type %d", int(s))
	}
}

// UnmarshalText accepts "road" and "transit".
func (s *ScenarioType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "road", "":
		*s = RoadScenario
	case "transit":
		*s = TransitScenario
	default:
		return fmt.Errorf("unknown scenario type %q", text)
	}

	return nil
}

// FileFormat is the extension the exported matrix is written with.
type FileFormat string

const (
	CSV FileFormat = "csv"
	TXT FileFormat = "txt"
)

// ExportMatrix writes the named matrix of a scenario to FilePath.
type ExportMatrix struct {
	Scenario   ScenarioType `json:"scenario"`
	FilePath   string       `json:"file_path"`
	Format     FileFormat   `json:"format"`
	MatrixName string       `json:"matrix_name"`
}

func (ExportMatrix) Name() string { return ExportMatrixScript }

func (e ExportMatrix) Execute(ctx context.Context, r Runner) (bool, error) {
	experiment, err := e.Scenario.experiment()
	if err != nil {
		return false, err
	}

	format := e.Format
	if format == "" {
		format = CSV
	}

	if format != CSV && format != TXT {
		return false, fmt.Errorf("unknown file format %q", e.Format)
	}

	raw, err := params.Build(func(w *params.Writer) {
		w.Field("ScenarioType", experiment)
		w.Field("FilePath", e.FilePath)
		w.Field("Format", string(format))
		w.Field("MatrixName", e.MatrixName)
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, ExportMatrixScript, raw)
}

// ImportNetwork builds the network from an exported network package.
type ImportNetwork struct {
	ToolboxDir         string `json:"toolbox_dir"`
	NetworkPackageFile string `json:"network_package_file"`
}

func (ImportNetwork) Name() string { return ImportNetworkScript }

func (i ImportNetwork) Execute(ctx context.Context, r Runner) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("NetworkPackageFile", i.NetworkPackageFile)
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, scriptID(i.ToolboxDir, ImportNetworkScript), raw)
}

// ImportTransitNetwork adds the transit lines found in NetworkDirectory.
type ImportTransitNetwork struct {
	ToolboxDir       string `json:"toolbox_dir"`
	NetworkDirectory string `json:"network_directory"`
}

func (ImportTransitNetwork) Name() string { return ImportTransitNetworkScript }

func (i ImportTransitNetwork) Execute(ctx context.Context, r Runner) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("ModelDirectory", i.NetworkDirectory)
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, scriptID(i.ToolboxDir, ImportTransitNetworkScript), raw)
}

// ImportTransitSchedule loads a transit service table into the network.
type ImportTransitSchedule struct {
	NetworkPackageFile string `json:"network_package_file"`
	ServiceTableCSV    string `json:"service_table_csv"`
}

func (ImportTransitSchedule) Name() string { return ImportTransitScheduleScript }

func (i ImportTransitSchedule) Execute(ctx context.Context, r Runner) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("NetworkPackageFile", i.NetworkPackageFile)
		w.Field("ServiceTableCSV", i.ServiceTableCSV)
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, ImportTransitScheduleScript, raw)
}

// Matrix import defaults used when a field is left empty.
const (
	DefaultMatrixID              = "testOD"
	DefaultCentroidConfiguration = "baseCentroidConfig"
	DefaultVehicleType           = "Car Class "
	DefaultMatrixInitialTime     = "06:00:00:000"
	DefaultMatrixDurationTime    = "03:00:00:000"
)

// ImportMatrixFromCSV imports an OD matrix from a CSV file.
// Use NewImportMatrixFromCSV for the usual third-normalized file with a header.
type ImportMatrixFromCSV struct {
	ODCSV                 string `json:"od_csv"`
	ThirdNormalized       bool   `json:"third_normalized"`
	IncludesHeader        bool   `json:"includes_header"`
	MatrixID              string `json:"matrix_id"`
	CentroidConfiguration string `json:"centroid_configuration"`
	VehicleType           string `json:"vehicle_type"`

	// InitialTime and DurationTime use the hh:mm:ss:mmm form.
	InitialTime  string `json:"initial_time"`
	DurationTime string `json:"duration_time"`
}

// NewImportMatrixFromCSV returns an import of odCSV as a third-normalized
// file with a header row.
func NewImportMatrixFromCSV(odCSV string) ImportMatrixFromCSV {
	return ImportMatrixFromCSV{ODCSV: odCSV, ThirdNormalized: true, IncludesHeader: true}
}

func (ImportMatrixFromCSV) Name() string { return ImportMatrixFromCSVScript }

func (m ImportMatrixFromCSV) Execute(ctx context.Context, r Runner) (bool, error) {
	raw, err := params.Build(func(w *params.Writer) {
		w.Field("ODCSV", m.ODCSV)
		w.Field("ThirdNormalized", m.ThirdNormalized)
		w.Field("IncludesHeader", m.IncludesHeader)
		w.Field("MatrixID", orDefault(m.MatrixID, DefaultMatrixID))
		w.Field("CentroidConfiguration", orDefault(m.CentroidConfiguration, DefaultCentroidConfiguration))
		w.Field("VehicleType", orDefault(m.VehicleType, DefaultVehicleType))
		w.Field("InitialTime", orDefault(m.InitialTime, DefaultMatrixInitialTime))
		w.Field("DurationTime", orDefault(m.DurationTime, DefaultMatrixDurationTime))
	})
	if err != nil {
		return false, err
	}

	return r.Run(ctx, ImportMatrixFromCSVScript, raw)
}
