package frame

import "strconv"

// Signal is the int32 tag that opens every frame on the channel.
type Signal int32

// Signals exchanged with the worker. Values are fixed by the worker bridge
// script; gaps (2, 6, 12, 13) belong to retired commands and are not sent.
const (
	// Start is sent by the worker once it is ready to accept requests.
	Start Signal = 0
	// Termination is sent by the controller to shut the worker down. When
	// the worker sends it, the worker has given up and exited.
	Termination Signal = 1
	// RunComplete reports that the requested operation finished.
	RunComplete Signal = 3
	// ParameterError is declared by the worker but never handled here.
	ParameterError Signal = 4
	// RuntimeError carries a script failure message.
	RuntimeError Signal = 5
	// ProgressReport is reserved. Nothing sends or consumes it.
	ProgressReport Signal = 7
	// RunCompleteWithParameter reports completion with a return value.
	RunCompleteWithParameter Signal = 8
	// CheckToolExists is answered as a successful completion.
	CheckToolExists Signal = 9
	// ToolDoesNotExistError is declared by the worker but never handled here.
	ToolDoesNotExistError Signal = 10
	// SentPrintMessage carries console output from the running script.
	SentPrintMessage Signal = 11
	// StartModuleWithParameters asks the worker to run a tool.
	StartModuleWithParameters Signal = 14
	// IncompatibleTool is declared by the worker but never handled here.
	IncompatibleTool Signal = 15
	// SwitchNetworkPath asks the worker to open a different network file.
	SwitchNetworkPath Signal = 16
	// SaveNetwork asks the worker to save the open network.
	SaveNetwork Signal = 17
)

var signalNames = map[Signal]string{
	Start:                     "Start",
	Termination:               "Termination",
	RunComplete:               "RunComplete",
	ParameterError:            "ParameterError",
	RuntimeError:              "RuntimeError",
	ProgressReport:            "ProgressReport",
	RunCompleteWithParameter:  "RunCompleteWithParameter",
	CheckToolExists:           "CheckToolExists",
	ToolDoesNotExistError:     "ToolDoesNotExistError",
	SentPrintMessage:          "SentPrintMessage",
	StartModuleWithParameters: "StartModuleWithParameters",
	IncompatibleTool:          "IncompatibleTool",
	SwitchNetworkPath:         "SwitchNetworkPath",
	SaveNetwork:               "SaveNetwork",
}

// String returns the signal name, or "Signal(n)" for values outside the protocol.
func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}

	return "Signal(" + strconv.Itoa(int(s)) + ")"
}

// Known reports whether s is part of the protocol.
func (s Signal) Known() bool {
	_, ok := signalNames[s]

	return ok
}

// PayloadCount returns how many length-prefixed strings follow the tag.
func (s Signal) PayloadCount() int {
	switch s {
	case StartModuleWithParameters:
		return 2
	case RuntimeError, SentPrintMessage, SwitchNetworkPath, SaveNetwork:
		return 1
	default:
		return 0
	}
}
