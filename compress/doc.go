// Package compress provides block compression for bytetrain sinks.
//
// The bytetrain encoding itself is never compressed: every unit is written as
// raw tag-prefixed bytes. This package sits below the sink, where a caller
// that stores or ships a stream may want it smaller. A BlockWriter collects
// the encoded bytes into blocks and writes each block compressed with a
// frame header; a BlockReader turns such a stream back into the original
// bytes for a decoder.
//
// # Codecs
//
//   - None: framing only, no compression
//   - Zstd: best ratio (klauspost/compress/zstd)
//   - S2: fast, Snappy-compatible (klauspost/compress/s2)
//   - LZ4: fastest decompression (pierrec/lz4)
//
// # Usage
//
//	f, _ := os.Create("stream.btz")
//	bw, err := compress.NewBlockWriter(f, compress.WithCodec(format.CompressionS2))
//	if err != nil {
//	    return err
//	}
//	enc := encoding.NewEncoder(sink.FromWriter(bw))
//	_ = enc.WriteWord(0xFC16)
//	_ = bw.Close()
//
// Reading back:
//
//	dec, _ := encoding.NewDecoder(compress.NewBlockReader(f))
package compress
