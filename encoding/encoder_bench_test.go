package encoding

import (
	"bytes"
	"testing"

	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/sink"
)

func BenchmarkEncoder_WriteQWord(b *testing.B) {
	enc := NewEncoder(sink.Discard)

	b.ReportAllocs()
	for i := range b.N {
		_ = enc.WriteQWord(uint64(i))
	}
}

func BenchmarkEncoder_WriteBuffer(b *testing.B) {
	for _, size := range []int{16, 4096, 1 << 20} {
		payload := bytes.Repeat([]byte{0x5A}, size)
		b.Run(format.SelectLengthClass(uint64(size)).BufferTag().String(), func(b *testing.B) {
			enc := NewEncoder(sink.Discard)

			b.SetBytes(int64(size))
			b.ReportAllocs()
			for range b.N {
				_ = enc.WriteBuffer(payload)
			}
		})
	}
}

func BenchmarkEncoder_MixedToBuffer(b *testing.B) {
	buf := sink.NewBuffer()
	defer buf.Release()
	enc := NewEncoder(buf)
	payload := []byte("metric.cpu.usage")

	b.ReportAllocs()
	for range b.N {
		buf.Reset()
		_ = enc.WriteHandlerBegin(format.MagicArray)
		_ = enc.WriteDWord(0xCCABBADC)
		_ = enc.WriteBuffer(payload)
		_ = enc.WriteHandlerEnd()
	}
}

func BenchmarkDecoder_Next(b *testing.B) {
	buf := sink.NewBuffer()
	defer buf.Release()
	enc := NewEncoder(buf)
	for range 1024 {
		_ = enc.WriteWord(0xFC16)
		_ = enc.WriteBuffer([]byte("payload"))
	}
	stream := bytes.Clone(buf.Bytes())

	b.SetBytes(int64(len(stream)))
	b.ReportAllocs()
	for range b.N {
		dec, _ := NewDecoder(bytes.NewReader(stream))
		for _, err := range dec.All() {
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
