// Package bytetrain provides a minimal tagged-binary encoding for unsigned
// integers and byte buffers.
//
// Every value is written as a self-describing unit: a one-byte tag, then a
// fixed payload or a length-prefixed buffer. Buffer lengths take the
// smallest of four widths (1, 2, 4 or 8 bytes) that can hold them. Handler
// begin/end and break markers let a higher-level protocol delimit nested
// structures inside the stream.
//
// # Basic Usage
//
// Encoding to any io.Writer:
//
//	import "github.com/arloliu/bytetrain"
//
//	enc := bytetrain.NewEncoder(conn)
//	if err := enc.WriteWord(0xFC16); err != nil {
//	    return err // the sink's error, unchanged
//	}
//	_ = enc.WriteBuffer([]byte("payload"))
//
// Encoding to a file, compressed in S2 blocks:
//
//	enc, file, err := bytetrain.CreateFile("stream.bt", sink.WithCompression(format.CompressionS2))
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
// Reading it back:
//
//	dec, closer, err := bytetrain.OpenFile("stream.bt", format.CompressionS2)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	for unit, err := range dec.All() {
//	    ...
//	}
//
// # Package Structure
//
// This package wraps the building blocks for the common cases:
//   - format: tag vocabulary and length classes
//   - encoding: Encoder, Decoder and the Write*To functions
//   - sink: the Sink interface and ready-made sinks
//   - compress: block compression applied below the sink
package bytetrain

import (
	"fmt"
	"io"
	"os"

	"github.com/arloliu/bytetrain/compress"
	"github.com/arloliu/bytetrain/encoding"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/sink"
)

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *encoding.Encoder {
	return encoding.NewEncoder(sink.FromWriter(w))
}

// NewBufferEncoder returns an Encoder writing into a new in-memory buffer.
// Call Release on the buffer when the bytes are no longer needed.
func NewBufferEncoder() (*encoding.Encoder, *sink.Buffer) {
	buf := sink.NewBuffer()

	return encoding.NewEncoder(buf), buf
}

// CreateFile creates (or truncates) path and returns an Encoder bound to it.
// The caller owns the returned file and must Close it to flush pending
// compressed blocks.
//
// Parameters:
//   - path: Destination file
//   - opts: File options (sink.WithCompression, sink.WithBlockSize, sink.WithFileMode)
func CreateFile(path string, opts ...sink.FileOption) (*encoding.Encoder, *sink.File, error) {
	file, err := sink.Create(path, opts...)
	if err != nil {
		return nil, nil, err
	}

	return encoding.NewEncoder(file), file, nil
}

// OpenFile opens a stream written by CreateFile and returns a Decoder over
// it. compression must match the one the file was written with;
// format.CompressionNone reads the raw stream.
func OpenFile(path string, compression format.CompressionType, opts ...encoding.DecoderOption) (*encoding.Decoder, io.Closer, error) {
	if _, err := compress.GetCodec(compression); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}

	var src io.Reader = f
	if compression != format.CompressionNone {
		src = compress.NewBlockReader(f)
	}

	dec, err := encoding.NewDecoder(src, opts...)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return dec, f, nil
}
