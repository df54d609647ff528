package compress

import (
	"fmt"

	"github.com/arloliu/bytetrain/format"
)

// Compressor compresses one block of encoded units.
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is owned by the caller unless the implementation
	// documents otherwise (NoOpCompressor returns its input). data is not
	// modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a block produced by the matching Compressor.
type Decompressor interface {
	// Decompress returns the original bytes of a compressed block, or an
	// error if data is corrupted or was produced by another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. Built-in codecs are safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
