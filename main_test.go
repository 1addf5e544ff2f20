package aimsunbridge_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/tmgtoolbox/aimsunbridge/internal/frame"
	"github.com/tmgtoolbox/aimsunbridge/internal/pipe"
)

const fakeWorkerEnv = "AIMSUNBRIDGE_FAKE_WORKER"

// TestMain doubles as the worker console: when fakeWorkerEnv is set the
// test binary serves the bridge protocol instead of running tests.
func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeWorkerEnv); mode != "" {
		os.Exit(fakeWorker(mode, os.Args[1:]))
	}

	goleak.VerifyTestMain(m)
}

// fakeWorker is started as `<exe> -script <script> <addr> <project>`.
func fakeWorker(mode string, args []string) int {
	if mode == "exit" {
		return 2
	}

	if len(args) != 4 || args[0] != "-script" {
		return 64
	}

	addr, project := args[2], args[3]

	conn, err := pipe.Dial(addr)
	if err != nil {
		return 65
	}
	defer conn.Close()

	if err := frame.WriteSignal(conn, frame.Start); err != nil {
		return 66
	}

	for {
		req, err := frame.Decode(conn)
		if err != nil {
			return 67
		}

		var replies []frame.Frame

		switch req.Signal {
		case frame.Termination:
			return 0

		case frame.StartModuleWithParameters:
			replies = runTool(req.Payload[0], req.Payload[1], project)

		case frame.SwitchNetworkPath:
			project = req.Payload[0]
			replies = []frame.Frame{{Signal: frame.RunComplete}}

		case frame.SaveNetwork:
			if err := os.WriteFile(req.Payload[0], []byte(project), 0o600); err != nil {
				replies = []frame.Frame{{Signal: frame.RuntimeError, Payload: []string{err.Error()}}}
			} else {
				replies = []frame.Frame{{Signal: frame.RunComplete}}
			}

		default:
			replies = []frame.Frame{{Signal: frame.ParameterError}}
		}

		for _, f := range replies {
			if err := frame.Encode(conn, f); err != nil {
				return 68
			}
		}
	}
}

func runTool(tool, params, project string) []frame.Frame {
	switch {
	case strings.HasSuffix(tool, "echo.py"):
		var decoded map[string]any
		if params != "" {
			if err := json.Unmarshal([]byte(params), &decoded); err != nil {
				return []frame.Frame{{Signal: frame.RuntimeError, Payload: []string{err.Error()}}}
			}
		}

		return []frame.Frame{
			{Signal: frame.SentPrintMessage, Payload: []string{"project " + project}},
			{Signal: frame.SentPrintMessage, Payload: []string{"params " + params}},
			{Signal: frame.RunComplete},
		}

	case strings.HasSuffix(tool, "fail.py"):
		return []frame.Frame{{Signal: frame.RuntimeError, Payload: []string{"Traceback: ValueError in " + tool}}}

	case strings.HasSuffix(tool, "crash.py"):
		os.Exit(3)

		return nil

	default:
		return []frame.Frame{{Signal: frame.RunComplete}}
	}
}
