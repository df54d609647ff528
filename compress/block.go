package compress

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bytetrain/endian"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/internal/options"
	"github.com/arloliu/bytetrain/internal/pool"
)

// Block frame layout:
//
//	[codec u8][raw length u32][compressed length u32][compressed bytes]
//
// All integers are little-endian.
const (
	BlockHeaderSize  = 9
	DefaultBlockSize = pool.BlockBufferDefaultSize
	MaxBlockSize     = 64 * 1024 * 1024
)

var (
	ErrCorruptBlock = errors.New("compress: corrupt block")
	ErrClosed       = errors.New("compress: block writer closed")
)

// SizedDecompressor is implemented by codecs that decompress faster when the
// original size is known up front.
type SizedDecompressor interface {
	DecompressSize(data []byte, rawSize int) ([]byte, error)
}

// BlockWriter is an io.Writer that groups written bytes into blocks and
// writes each block compressed, with a small frame header, to the
// underlying writer.
//
// A block is emitted when it reaches the configured block size, on Flush and
// on Close. BlockWriter is not safe for concurrent use.
type BlockWriter struct {
	w         io.Writer
	codec     Codec
	codecType format.CompressionType
	blockSize int
	buf       *pool.ByteBuffer
	engine    endian.EndianEngine
	err       error
	closed    bool
}

// BlockWriterOption configures a BlockWriter.
type BlockWriterOption = options.Option[*BlockWriter]

// WithCodec selects the block compression algorithm. Default: zstd.
func WithCodec(compressionType format.CompressionType) BlockWriterOption {
	return options.New(func(bw *BlockWriter) error {
		codec, err := GetCodec(compressionType)
		if err != nil {
			return err
		}
		bw.codec = codec
		bw.codecType = compressionType

		return nil
	})
}

// WithBlockSize sets the uncompressed size at which a block is emitted.
func WithBlockSize(size int) BlockWriterOption {
	return options.New(func(bw *BlockWriter) error {
		if size <= 0 || size > MaxBlockSize {
			return fmt.Errorf("block size %d out of range (1..%d)", size, MaxBlockSize)
		}
		bw.blockSize = size

		return nil
	})
}

// NewBlockWriter creates a BlockWriter on top of w.
//
// Parameters:
//   - w: Destination of the framed blocks
//   - opts: Optional configuration (codec, block size)
//
// Returns:
//   - *BlockWriter: Writer ready for use; call Close to emit the last block
//   - error: Invalid option value
func NewBlockWriter(w io.Writer, opts ...BlockWriterOption) (*BlockWriter, error) {
	bw := &BlockWriter{
		w:         w,
		codec:     NewZstdCompressor(),
		codecType: format.CompressionZstd,
		blockSize: DefaultBlockSize,
		engine:    endian.GetLittleEndianEngine(),
	}

	if err := options.Apply(bw, opts...); err != nil {
		return nil, err
	}

	bw.buf = pool.GetBlockBuffer()
	bw.buf.Grow(bw.blockSize)

	return bw, nil
}

// Write buffers p, emitting every block that fills up. Once a block fails to
// reach the underlying writer, every later call returns that error.
func (bw *BlockWriter) Write(p []byte) (int, error) {
	if bw.closed {
		return 0, ErrClosed
	}
	if bw.err != nil {
		return 0, bw.err
	}

	written := 0
	for len(p) > 0 {
		room := bw.blockSize - bw.buf.Len()
		chunk := p
		if len(chunk) > room {
			chunk = p[:room]
		}

		bw.buf.MustWrite(chunk)
		written += len(chunk)
		p = p[len(chunk):]

		if bw.buf.Len() == bw.blockSize {
			if err := bw.writeBlock(); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

// Buffered returns the number of bytes waiting for the next block.
func (bw *BlockWriter) Buffered() int {
	if bw.buf == nil {
		return 0
	}

	return bw.buf.Len()
}

// Flush emits the pending bytes as a block, if any.
func (bw *BlockWriter) Flush() error {
	if bw.closed {
		return ErrClosed
	}
	if bw.err != nil {
		return bw.err
	}
	if bw.buf.Len() == 0 {
		return nil
	}

	return bw.writeBlock()
}

// Close flushes the pending block and releases the internal buffer. It does
// not close the underlying writer. Close is idempotent.
//
// After a failed block write nothing more is flushed and Close returns that
// failure.
func (bw *BlockWriter) Close() error {
	if bw.closed {
		return nil
	}

	err := bw.Flush()
	bw.closed = true
	pool.PutBlockBuffer(bw.buf)
	bw.buf = nil

	return err
}

func (bw *BlockWriter) writeBlock() error {
	raw := bw.buf.Bytes()
	compressed, err := bw.codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("compress %s block: %w", bw.codecType, err)
	}

	frame := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(frame)

	frame.Grow(BlockHeaderSize + len(compressed))
	frame.B = append(frame.B, byte(bw.codecType))
	frame.B = bw.engine.AppendUint32(frame.B, uint32(len(raw)))        //nolint:gosec
	frame.B = bw.engine.AppendUint32(frame.B, uint32(len(compressed))) //nolint:gosec
	frame.MustWrite(compressed)

	// The destination may now hold part of a frame; nothing written after
	// it could be read back, so the writer stays failed.
	if _, err := frame.WriteTo(bw.w); err != nil {
		bw.err = fmt.Errorf("write %s block: %w", bw.codecType, err)
		return bw.err
	}

	bw.buf.Reset()

	return nil
}

// BlockReader is an io.Reader over a stream produced by BlockWriter. Blocks
// may use any built-in codec; each frame names its own.
type BlockReader struct {
	r      io.Reader
	engine endian.EndianEngine
	cur    []byte
	header [BlockHeaderSize]byte
}

// NewBlockReader creates a BlockReader reading frames from r.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{
		r:      r,
		engine: endian.GetLittleEndianEngine(),
	}
}

// Read serves decompressed bytes. It returns io.EOF only at a frame
// boundary; a frame cut short or failing validation yields ErrCorruptBlock.
func (br *BlockReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(br.cur) == 0 {
		if err := br.nextBlock(); err != nil {
			return 0, err
		}
	}

	n := copy(p, br.cur)
	br.cur = br.cur[n:]

	return n, nil
}

func (br *BlockReader) nextBlock() error {
	if _, err := io.ReadFull(br.r, br.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated header", ErrCorruptBlock)
		}

		return err
	}

	compressionType := format.CompressionType(br.header[0])
	codec, err := GetCodec(compressionType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBlock, err)
	}

	rawSize := int(br.engine.Uint32(br.header[1:5]))
	compressedSize := int(br.engine.Uint32(br.header[5:9]))
	if rawSize > MaxBlockSize || compressedSize > lz4MaxBlockSize {
		return fmt.Errorf("%w: block sizes %d/%d exceed limit", ErrCorruptBlock, rawSize, compressedSize)
	}

	payload := make([]byte, compressedSize)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated payload", ErrCorruptBlock)
		}

		return err
	}

	var raw []byte
	if sized, ok := codec.(SizedDecompressor); ok {
		raw, err = sized.DecompressSize(payload, rawSize)
	} else {
		raw, err = codec.Decompress(payload)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBlock, err)
	}
	if len(raw) != rawSize {
		return fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorruptBlock, len(raw), rawSize)
	}

	br.cur = raw

	return nil
}
