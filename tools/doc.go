// Package tools wraps the worker-side toolbox scripts in typed Go values.
//
// Each Tool knows its script identifier and how to lay out its parameters;
// Execute hands both to a Runner, normally an aimsunbridge.Controller.
// Sequence runs several tools in order against the same Runner.
package tools
