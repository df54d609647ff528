package encoding

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps every write as a separate chunk.
type recordingSink struct {
	chunks [][]byte
}

func (r *recordingSink) Write(p []byte) error {
	r.chunks = append(r.chunks, bytes.Clone(p))
	return nil
}

func (r *recordingSink) stream() []byte {
	return bytes.Join(r.chunks, nil)
}

// failingSink accepts writes until the failOn-th one (1-based), which it
// rejects with err. Later writes are counted but also rejected.
type failingSink struct {
	failOn int
	err    error
	calls  int
	got    [][]byte
}

func (f *failingSink) Write(p []byte) error {
	f.calls++
	if f.calls >= f.failOn {
		return f.err
	}
	f.got = append(f.got, bytes.Clone(p))

	return nil
}

// =============================================================================
// Scalars
// =============================================================================

func TestEncoder_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Encoder) error
		want  []byte
	}{
		{"byte", func(e *Encoder) error { return e.WriteByte(0x32) }, []byte{1, 0x32}},
		{"byte max", func(e *Encoder) error { return e.WriteByte(0xFF) }, []byte{1, 0xFF}},
		{"word", func(e *Encoder) error { return e.WriteWord(0xFC16) }, []byte{2, 0x16, 0xFC}},
		{"dword", func(e *Encoder) error { return e.WriteDWord(0xCCABBADC) }, []byte{3, 0xDC, 0xBA, 0xAB, 0xCC}},
		{
			"qword",
			func(e *Encoder) error { return e.WriteQWord(0xDDDDDDDDFFFFFFFF) },
			[]byte{4, 0xFF, 0xFF, 0xFF, 0xFF, 0xDD, 0xDD, 0xDD, 0xDD},
		},
		{"qword zero", func(e *Encoder) error { return e.WriteQWord(0) }, []byte{4, 0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSink{}
			require.NoError(t, tt.write(NewEncoder(rec)))

			require.Len(t, rec.chunks, 1, "a scalar unit is a single sink write")
			require.Equal(t, tt.want, rec.chunks[0])
		})
	}
}

func TestEncoder_ScalarUnitLength(t *testing.T) {
	rec := &recordingSink{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.WriteByte(0))
	require.NoError(t, enc.WriteWord(0xFFFF))
	require.NoError(t, enc.WriteDWord(0xFFFFFFFF))
	require.NoError(t, enc.WriteQWord(^uint64(0)))

	widths := []int{1, 2, 4, 8}
	for i, chunk := range rec.chunks {
		assert.Len(t, chunk, 1+widths[i])
		assert.Equal(t, format.Tag(chunk[0]).HeaderSize(), len(chunk))
	}
}

// =============================================================================
// Buffers
// =============================================================================

func TestEncoder_EmptyBuffer(t *testing.T) {
	rec := &recordingSink{}
	require.NoError(t, NewEncoder(rec).WriteBuffer(nil))

	require.Equal(t, [][]byte{{byte(format.TagByteBuffer), 0}}, rec.chunks)
}

func TestEncoder_BufferClasses(t *testing.T) {
	tests := []struct {
		length int
		tag    format.Tag
		header []byte
	}{
		{1, format.TagByteBuffer, []byte{5, 1}},
		{255, format.TagByteBuffer, []byte{5, 0xFF}},
		{256, format.TagWordBuffer, []byte{6, 0x00, 0x01}},
		{0xF3, format.TagByteBuffer, []byte{5, 0xF3}},
		{0xFF3, format.TagWordBuffer, []byte{6, 0xF3, 0x0F}},
		{65535, format.TagWordBuffer, []byte{6, 0xFF, 0xFF}},
		{65536, format.TagDWordBuffer, []byte{7, 0x00, 0x00, 0x01, 0x00}},
		{0xFFFF3, format.TagDWordBuffer, []byte{7, 0xF3, 0xFF, 0x0F, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			payload := bytes.Repeat([]byte{0xA5}, tt.length)
			rec := &recordingSink{}

			require.NoError(t, NewEncoder(rec).WriteBuffer(payload))

			require.Len(t, rec.chunks, 2)
			require.Equal(t, tt.header, rec.chunks[0])
			require.Equal(t, payload, rec.chunks[1])
			require.Equal(t, 1+int(format.SelectLengthClass(uint64(tt.length)))+tt.length, len(rec.stream()))
		})
	}
}

func TestAppendBufferHeader(t *testing.T) {
	tests := []struct {
		length uint64
		want   []byte
	}{
		{0, []byte{5, 0}},
		{255, []byte{5, 0xFF}},
		{256, []byte{6, 0x00, 0x01}},
		{65535, []byte{6, 0xFF, 0xFF}},
		{65536, []byte{7, 0x00, 0x00, 0x01, 0x00}},
		{4294967295, []byte{7, 0xFF, 0xFF, 0xFF, 0xFF}},
		{4294967296, []byte{8, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		got := appendBufferHeader(nil, tt.length)
		require.Equal(t, tt.want, got, "length %d", tt.length)

		class := format.SelectLengthClass(tt.length)
		require.Equal(t, class.BufferTag(), format.Tag(got[0]))
		require.Len(t, got, 1+class.Width(), "length field must match the selected class")
	}
}

// =============================================================================
// Framing markers
// =============================================================================

func TestEncoder_HandlerPair(t *testing.T) {
	rec := &recordingSink{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.WriteHandlerBegin(format.MagicChain))
	require.NoError(t, enc.WriteHandlerEnd())

	require.Equal(t, []byte{9, 0x01, 0x00, 10}, rec.stream())
}

func TestEncoder_HandlerBeginOpenMagic(t *testing.T) {
	rec := &recordingSink{}
	require.NoError(t, NewEncoder(rec).WriteHandlerBegin(format.Magic(0xBEEF)))

	require.Equal(t, []byte{9, 0xEF, 0xBE}, rec.stream())
}

func TestEncoder_Break(t *testing.T) {
	rec := &recordingSink{}
	require.NoError(t, NewEncoder(rec).WriteBreak(2, 3))

	require.Equal(t, []byte{11, 2, 3}, rec.stream())
}

func TestEncoder_UnbalancedHandlersAreNotValidated(t *testing.T) {
	rec := &recordingSink{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.WriteHandlerEnd())
	require.NoError(t, enc.WriteHandlerEnd())
	require.NoError(t, enc.WriteHandlerBegin(format.MagicArray))

	require.Equal(t, []byte{10, 10, 9, 0x02, 0x00}, rec.stream())
}

// =============================================================================
// Sink failures
// =============================================================================

func TestEncoder_FailureIsReturnedUnchanged(t *testing.T) {
	failure := errors.New("link down")

	ops := map[string]func(*Encoder) error{
		"byte":          func(e *Encoder) error { return e.WriteByte(1) },
		"word":          func(e *Encoder) error { return e.WriteWord(1) },
		"dword":         func(e *Encoder) error { return e.WriteDWord(1) },
		"qword":         func(e *Encoder) error { return e.WriteQWord(1) },
		"buffer":        func(e *Encoder) error { return e.WriteBuffer([]byte{1}) },
		"handler begin": func(e *Encoder) error { return e.WriteHandlerBegin(format.MagicArray) },
		"handler end":   func(e *Encoder) error { return e.WriteHandlerEnd() },
		"break":         func(e *Encoder) error { return e.WriteBreak(1, 1) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			fs := &failingSink{failOn: 1, err: failure}
			require.Same(t, failure, op(NewEncoder(fs)))
			require.Equal(t, 1, fs.calls, "no retry after a failure")
		})
	}
}

func TestEncoder_BufferHeaderFailureSkipsPayload(t *testing.T) {
	fs := &failingSink{failOn: 1, err: sink.ErrTimeout}

	err := NewEncoder(fs).WriteBuffer([]byte("payload"))
	require.ErrorIs(t, err, sink.ErrTimeout)
	require.Equal(t, 1, fs.calls, "payload must not be written after a failed header")
}

func TestEncoder_BufferPayloadFailure(t *testing.T) {
	fs := &failingSink{failOn: 2, err: sink.ErrShortWrite}

	err := NewEncoder(fs).WriteBuffer([]byte("payload"))
	require.ErrorIs(t, err, sink.ErrShortWrite)
	require.Equal(t, 2, fs.calls)
	// The header stays in the stream; there is no rollback.
	require.Equal(t, [][]byte{{5, 7}}, fs.got)
}

func TestEncoder_FailureMidStream(t *testing.T) {
	fs := &failingSink{failOn: 3, err: sink.ErrTimeout}
	enc := NewEncoder(fs)

	require.NoError(t, enc.WriteByte(1))
	require.NoError(t, enc.WriteWord(2))
	require.ErrorIs(t, enc.WriteDWord(3), sink.ErrTimeout)
	require.Equal(t, 3, fs.calls)
	require.Equal(t, [][]byte{{1, 1}, {2, 2, 0}}, fs.got)
}

// =============================================================================
// Binding
// =============================================================================

func TestEncoder_Unbound(t *testing.T) {
	enc := NewEncoder(nil)
	require.Nil(t, enc.Sink())

	require.ErrorIs(t, enc.WriteByte(1), ErrUnbound)
	require.ErrorIs(t, enc.WriteWord(1), ErrUnbound)
	require.ErrorIs(t, enc.WriteDWord(1), ErrUnbound)
	require.ErrorIs(t, enc.WriteQWord(1), ErrUnbound)
	require.ErrorIs(t, enc.WriteBuffer(nil), ErrUnbound)
	require.ErrorIs(t, enc.WriteHandlerBegin(1), ErrUnbound)
	require.ErrorIs(t, enc.WriteHandlerEnd(), ErrUnbound)
	require.ErrorIs(t, enc.WriteBreak(1, 1), ErrUnbound)
}

func TestEncoder_ByteWriter(t *testing.T) {
	rec := &recordingSink{}

	var w io.ByteWriter = NewEncoder(rec)
	require.NoError(t, w.WriteByte('A'))
	require.Equal(t, []byte{1, 'A'}, rec.stream())
}

func TestEncoder_Rebind(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{}

	enc := NewEncoder(first)
	require.NoError(t, enc.WriteByte(0x32))
	require.Same(t, first, enc.Sink())

	enc.Bind(second)
	require.Same(t, second, enc.Sink())
	require.NoError(t, enc.WriteWord(0xFC16))
	require.NoError(t, enc.WriteHandlerEnd())

	require.Equal(t, []byte{1, 0x32}, first.stream(), "earlier bytes remain untouched")
	require.Equal(t, []byte{2, 0x16, 0xFC, 10}, second.stream())

	enc.Bind(nil)
	require.ErrorIs(t, enc.WriteByte(1), ErrUnbound)
	require.Equal(t, []byte{2, 0x16, 0xFC, 10}, second.stream())
}

func TestEncoder_SinkFunc(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(sink.Func(func(p []byte) error {
		out.Write(p)
		return nil
	}))

	require.NoError(t, enc.WriteBreak(1, 1))
	require.Equal(t, []byte{11, 1, 1}, out.Bytes())
}

// =============================================================================
// Specific-sink functions
// =============================================================================

func TestWriteTo_MatchesEncoder(t *testing.T) {
	viaEncoder := &recordingSink{}
	enc := NewEncoder(viaEncoder)
	require.NoError(t, enc.WriteByte(7))
	require.NoError(t, enc.WriteWord(7))
	require.NoError(t, enc.WriteDWord(7))
	require.NoError(t, enc.WriteQWord(7))
	require.NoError(t, enc.WriteBuffer([]byte{7}))
	require.NoError(t, enc.WriteHandlerBegin(7))
	require.NoError(t, enc.WriteHandlerEnd())
	require.NoError(t, enc.WriteBreak(7, 7))

	direct := &recordingSink{}
	require.NoError(t, WriteByteTo(direct, 7))
	require.NoError(t, WriteWordTo(direct, 7))
	require.NoError(t, WriteDWordTo(direct, 7))
	require.NoError(t, WriteQWordTo(direct, 7))
	require.NoError(t, WriteBufferTo(direct, []byte{7}))
	require.NoError(t, WriteHandlerBeginTo(direct, 7))
	require.NoError(t, WriteHandlerEndTo(direct))
	require.NoError(t, WriteBreakTo(direct, 7, 7))

	require.Equal(t, viaEncoder.chunks, direct.chunks)
}

func TestWriteTo_DoesNotTouchBinding(t *testing.T) {
	bound := &recordingSink{}
	other := &recordingSink{}
	enc := NewEncoder(bound)

	require.NoError(t, WriteBreakTo(other, 1, 2))
	require.NoError(t, enc.WriteHandlerEnd())

	require.Equal(t, []byte{11, 1, 2}, other.stream())
	require.Equal(t, []byte{10}, bound.stream())
}
