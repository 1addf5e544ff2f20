package tools

import (
	"context"
	"fmt"
	"strings"
)

// ProgressFunc is told which step is about to run. After the last step it
// is called once more with done == total and an empty name.
type ProgressFunc func(done, total int, name string)

// Sequence runs tools in order against one Runner.
//
// A step that returns false stops the sequence; its result is returned
// without an error. A step that returns an error stops it too, with the
// error annotated by the step's position and name.
type Sequence struct {
	Tools    []Tool
	Progress ProgressFunc
}

func (s Sequence) Name() string {
	names := make([]string, len(s.Tools))
	for i, t := range s.Tools {
		names[i] = t.Name()
	}

	return "sequence [" + strings.Join(names, ", ") + "]"
}

func (s Sequence) Execute(ctx context.Context, r Runner) (bool, error) {
	total := len(s.Tools)

	for i, t := range s.Tools {
		s.report(i, total, t.Name())

		ok, err := t.Execute(ctx, r)
		if err != nil {
			return false, fmt.Errorf("step %d/%d (%s): %w", i+1, total, t.Name(), err)
		}

		if !ok {
			return false, nil
		}
	}

	s.report(total, total, "")

	return true, nil
}

func (s Sequence) report(done, total int, name string) {
	if s.Progress != nil {
		s.Progress(done, total, name)
	}
}
