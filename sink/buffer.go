package sink

import "github.com/arloliu/bytetrain/internal/pool"

// Buffer is an in-memory Sink backed by a pooled byte buffer.
//
// Buffer is not safe for concurrent use. Call Release when done to return
// the memory to the pool; a released Buffer rejects writes with ErrClosed.
type Buffer struct {
	buf *pool.ByteBuffer
}

var _ Sink = (*Buffer)(nil)

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{buf: pool.GetStreamBuffer()}
}

// Write appends p. It fails only after Release.
func (b *Buffer) Write(p []byte) error {
	if b.buf == nil {
		return ErrClosed
	}
	b.buf.MustWrite(p)

	return nil
}

// Bytes returns the accumulated stream. The slice aliases the internal
// buffer and is valid until the next Write, Reset or Release.
func (b *Buffer) Bytes() []byte {
	if b.buf == nil {
		return nil
	}

	return b.buf.Bytes()
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	if b.buf == nil {
		return 0
	}

	return b.buf.Len()
}

// Reset discards the accumulated bytes and keeps the memory.
func (b *Buffer) Reset() {
	if b.buf != nil {
		b.buf.Reset()
	}
}

// Release returns the memory to the pool.
func (b *Buffer) Release() {
	if b.buf != nil {
		pool.PutStreamBuffer(b.buf)
		b.buf = nil
	}
}
