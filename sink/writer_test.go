package sink

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedWriter struct {
	n   int
	err error
}

func (w scriptedWriter) Write(p []byte) (int, error) {
	return min(w.n, len(p)), w.err
}

func TestFromWriter(t *testing.T) {
	var out bytes.Buffer
	s := FromWriter(&out)

	require.NoError(t, s.Write([]byte{0x01, 0x32}))
	require.NoError(t, s.Write([]byte{0x0A}))
	require.Equal(t, []byte{0x01, 0x32, 0x0A}, out.Bytes())
	require.Same(t, &out, s.Writer())
}

func TestFromWriter_ShortWriteWithoutError(t *testing.T) {
	s := FromWriter(scriptedWriter{n: 1})

	err := s.Write([]byte{0x02, 0x16, 0xFC})
	require.ErrorIs(t, err, ErrShortWrite)
	require.Contains(t, err.Error(), "wrote 1 of 3 bytes")
}

func TestFromWriter_IOShortWrite(t *testing.T) {
	s := FromWriter(scriptedWriter{n: 2, err: io.ErrShortWrite})

	err := s.Write([]byte{0x02, 0x16, 0xFC})
	require.ErrorIs(t, err, ErrShortWrite)
	require.ErrorIs(t, err, io.ErrShortWrite)
}

func TestFromWriter_Timeout(t *testing.T) {
	s := FromWriter(scriptedWriter{err: os.ErrDeadlineExceeded})

	err := s.Write([]byte{0x0A})
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	require.True(t, IsTimeout(err))
}

func TestFromWriter_TimeoutSentinelUnchanged(t *testing.T) {
	s := FromWriter(scriptedWriter{err: ErrTimeout})

	require.Same(t, ErrTimeout, s.Write([]byte{0x0A}))
}

func TestFromWriter_OtherError(t *testing.T) {
	failure := errors.New("broken pipe")
	s := FromWriter(scriptedWriter{err: failure})

	err := s.Write([]byte{0x0A})
	require.ErrorIs(t, err, failure)
	require.NotErrorIs(t, err, ErrTimeout)
	require.NotErrorIs(t, err, ErrShortWrite)
	require.Contains(t, err.Error(), "sink write")
}
