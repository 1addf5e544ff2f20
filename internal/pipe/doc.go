// Package pipe provides the duplex byte channel between the controller and
// the worker.
//
// The controller side is the server: it creates a named endpoint, launches
// the worker with the endpoint's address, and blocks in WaitForConnection
// until the worker dials in. The endpoint is a Unix-domain stream socket
// under the OS temp directory, which is available on Linux, macOS and
// Windows 10 and later. Exactly one client is accepted per channel.
package pipe
