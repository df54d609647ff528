// Package sink defines the destination that bytetrain encoders write to.
//
// A Sink receives the bytes of encoded units. It either accepts the whole
// slice or reports an error; there is no partial success. Encoders never
// inspect a sink beyond calling Write and never retry a failed write.
//
// Any type with a Write(p []byte) error method is a Sink. Closures are
// adapted with Func:
//
//	var captured [][]byte
//	s := sink.Func(func(p []byte) error {
//	    captured = append(captured, bytes.Clone(p))
//	    return nil
//	})
//
// The package also provides ready-made sinks: FromWriter adapts an
// io.Writer, Buffer keeps the stream in memory, Meter counts and
// fingerprints what passes through another sink, and Create opens a file,
// optionally with block compression.
package sink

import (
	"errors"
	"net"
	"os"
)

// Sink accepts the bytes of encoded units.
//
// Write must treat all of p as one transmission: a nil error means every
// byte of p is considered delivered. Implementations must not retain p after
// returning.
type Sink interface {
	Write(p []byte) error
}

// Func adapts an ordinary function to the Sink interface.
type Func func(p []byte) error

// Write calls f(p).
func (f Func) Write(p []byte) error {
	return f(p)
}

// Discard is a Sink that accepts and drops everything.
var Discard Sink = Func(func([]byte) error { return nil })

var (
	// ErrShortWrite reports that the destination accepted fewer bytes than given.
	ErrShortWrite = errors.New("sink: short write")
	// ErrTimeout reports that the destination did not accept the bytes in time.
	ErrTimeout = errors.New("sink: timeout")
	// ErrClosed reports a write to a sink that was already closed or released.
	ErrClosed = errors.New("sink: closed")
)

// IsTimeout reports whether err signals a timeout: ErrTimeout,
// os.ErrDeadlineExceeded, or a net.Error whose Timeout method returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
