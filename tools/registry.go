package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// registry maps session tool names to constructors carrying their defaults.
var registry = map[string]func() Tool{
	"road_assignment":            func() Tool { return &RoadAssignment{} },
	"transit_assignment":         func() Tool { return &TransitAssignment{} },
	"create_traffic_demand":      func() Tool { return &CreateTrafficDemand{} },
	"create_public_transit_plan": func() Tool { return &CreatePublicTransitPlan{} },
	"export_matrix":              func() Tool { return &ExportMatrix{} },
	"import_network":             func() Tool { return &ImportNetwork{} },
	"import_transit_network":     func() Tool { return &ImportTransitNetwork{} },
	"import_transit_schedule":    func() Tool { return &ImportTransitSchedule{} },
	"import_matrix_csv": func() Tool {
		m := NewImportMatrixFromCSV("")

		return &m
	},
}

// Names lists the tool names Decode understands, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Decode builds the tool called name from a JSON object of its fields.
// Unknown fields are rejected. A nil raw leaves every field at its default.
func Decode(name string, raw json.RawMessage) (Tool, error) {
	newTool, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q (known: %v)", name, Names())
	}

	t := newTool()

	if len(raw) == 0 {
		return t, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return t, nil
}
