// Package errors defines error types for the worker bridge.
//
// This package provides structured error types for the failures a bridge
// controller can surface: launch problems, a lost connection, script errors
// reported by the worker, an unexpected worker shutdown and unhandled
// signals. All error types support error unwrapping and can be checked using
// errors.Is, errors.As, and errors.AsType.
package errors
