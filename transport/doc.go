// Package transport pushes rendered messages to a receiving system and collects
// whatever the peer answers.
//
// A Device is an opaque byte sink: Send writes one complete transmission and waits up
// to the reply timeout for a single read. The reply is returned raw; it is neither
// parsed nor acknowledged. Two devices are provided:
//
//   - TCPDevice: a raw TCP client, the usual setup for LIS interface engines.
//   - SerialDevice: an RS-232 line (8N1) through go.bug.st/serial, for instruments
//     and middleware that still listen on a COM port.
//
// Every I/O failure is reported as an error matching ErrTransport, so callers can tell
// transport failures apart from configuration mistakes with errors.Is.
package transport
