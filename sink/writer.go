package sink

import (
	"errors"
	"fmt"
	"io"
)

// WriterSink adapts an io.Writer to the Sink interface.
type WriterSink struct {
	w io.Writer
}

var _ Sink = (*WriterSink)(nil)

// FromWriter returns a Sink writing to w.
//
// Error mapping:
//   - fewer bytes written than requested: ErrShortWrite
//   - a timeout error (see IsTimeout): ErrTimeout, wrapping the cause
//   - any other error: wrapped with "sink write"
func FromWriter(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Writer returns the wrapped io.Writer.
func (s *WriterSink) Writer() io.Writer {
	return s.w
}

// Write writes all of p to the underlying writer.
func (s *WriterSink) Write(p []byte) error {
	n, err := s.w.Write(p)
	if err != nil {
		switch {
		case IsTimeout(err):
			if errors.Is(err, ErrTimeout) {
				return err
			}

			return fmt.Errorf("%w: %w", ErrTimeout, err)
		case errors.Is(err, io.ErrShortWrite):
			return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrShortWrite, n, len(p), err)
		default:
			return fmt.Errorf("sink write: %w", err)
		}
	}
	if n < len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}

	return nil
}
