// Package frame implements the wire format spoken with the worker bridge.
//
// Every frame starts with a little-endian int32 Signal. Signals that carry
// data are followed by one or two strings, each written as a little-endian
// int32 count of UTF-16 code units and then the UTF-16LE units themselves:
//
//	signal:int32 [ len:int32 units:[len]uint16 ]...
//
// The codec holds no state between calls. Writes are assembled in memory,
// written once and flushed; reads pull exactly the bytes they need.
package frame
