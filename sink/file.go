package sink

import (
	"errors"
	"fmt"
	"os"

	"github.com/arloliu/bytetrain/compress"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/internal/options"
)

const defaultFileMode os.FileMode = 0o600

type fileConfig struct {
	compression format.CompressionType
	blockSize   int
	mode        os.FileMode
}

// FileOption configures Create.
type FileOption = options.Option[*fileConfig]

// WithCompression stores the stream in compressed blocks (see the compress
// package). CompressionNone, the default, stores the raw stream.
func WithCompression(compressionType format.CompressionType) FileOption {
	return options.New(func(c *fileConfig) error {
		if _, err := compress.GetCodec(compressionType); err != nil {
			return err
		}
		c.compression = compressionType

		return nil
	})
}

// WithBlockSize sets the compression block size. It has no effect without
// WithCompression.
func WithBlockSize(size int) FileOption {
	return options.New(func(c *fileConfig) error {
		if size <= 0 || size > compress.MaxBlockSize {
			return fmt.Errorf("block size %d out of range (1..%d)", size, compress.MaxBlockSize)
		}
		c.blockSize = size

		return nil
	})
}

// WithFileMode sets the permission bits used when the file is created.
// Default: 0600.
func WithFileMode(mode os.FileMode) FileOption {
	return options.NoError(func(c *fileConfig) {
		c.mode = mode
	})
}

// File is a Sink writing to a file it owns.
//
// With compression enabled, bytes are held until a block fills or Close is
// called; a Write that returns nil has therefore only reached the block
// buffer. File is not safe for concurrent use.
type File struct {
	f      *os.File
	blocks *compress.BlockWriter
	out    *WriterSink
	closed bool
}

var _ Sink = (*File)(nil)

// Create creates or truncates the file at path and returns it as a Sink.
func Create(path string, opts ...FileOption) (*File, error) {
	cfg := &fileConfig{
		compression: format.CompressionNone,
		blockSize:   compress.DefaultBlockSize,
		mode:        defaultFileMode,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, cfg.mode)
	if err != nil {
		return nil, fmt.Errorf("create sink file: %w", err)
	}

	file := &File{f: f}
	if cfg.compression == format.CompressionNone {
		file.out = FromWriter(f)

		return file, nil
	}

	file.blocks, err = compress.NewBlockWriter(f,
		compress.WithCodec(cfg.compression),
		compress.WithBlockSize(cfg.blockSize),
	)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	file.out = FromWriter(file.blocks)

	return file, nil
}

// Name returns the file path.
func (s *File) Name() string {
	return s.f.Name()
}

// Write sends p to the file, through the block writer if compression is on.
func (s *File) Write(p []byte) error {
	if s.closed {
		return ErrClosed
	}

	return s.out.Write(p)
}

// Flush emits any pending compressed block. It is a no-op for raw files.
func (s *File) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if s.blocks == nil {
		return nil
	}

	return s.blocks.Flush()
}

// Close flushes pending data and closes the file. Close is idempotent.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var flushErr error
	if s.blocks != nil {
		flushErr = s.blocks.Close()
	}

	return errors.Join(flushErr, s.f.Close())
}
