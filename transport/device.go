package transport

import (
	"context"
	"errors"
)

// Sentinel errors of the transport layer.
var (
	// ErrTransport is the class of all connection, send and receive failures.
	ErrTransport = errors.New("transport: transport failure")
	// ErrNotOpen is returned when Send is called before Open or after Close.
	// It also matches ErrTransport.
	ErrNotOpen = transportError("transport: device is not open")
	// ErrAlreadyOpen is returned by Open on an open device.
	ErrAlreadyOpen = errors.New("transport: device is already open")
)

// Device is a byte sink connected to a receiving system.
//
// Implementations are safe for concurrent use, but Send calls are serialized: one
// transmission and its reply complete before the next one starts.
type Device interface {
	// Open establishes the connection.
	Open(ctx context.Context) error
	// Send writes data and returns the peer's reply, or nil when the peer sent nothing
	// within the reply timeout.
	Send(ctx context.Context, data []byte) ([]byte, error)
	// Close releases the connection. Closing a closed device is a no-op.
	Close() error
	// String describes the endpoint, e.g. "tcp://127.0.0.1:4000".
	String() string
}

// classError is a sentinel that also matches ErrTransport.
type classError struct {
	msg string
}

func transportError(msg string) error {
	return &classError{msg: msg}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Is(target error) bool { return target == ErrTransport }
