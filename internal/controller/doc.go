// Package controller implements the request/response side of the worker
// bridge. Open wires a channel and a launched worker together; New runs
// the protocol over any connected channel.
package controller
