// Package endian provides the byte order used by the bytetrain wire format.
//
// Every multi-byte field in a bytetrain stream (scalar values, buffer
// lengths, handler magics) is little-endian, independent of the host.
// Values are produced with explicit byte extraction through the
// encoding/binary append API, never by reinterpreting memory.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint16(buf, 0xFC16) // 0x16, 0xFC
//
// For fields whose width is chosen at runtime (buffer lengths), use
// AppendUint and Uint:
//
//	buf = endian.AppendUint(engine, buf, uint64(len(p)), 2)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine values are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines the ByteOrder and AppendByteOrder interfaces from
// encoding/binary. binary.LittleEndian and binary.BigEndian satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the wire order.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// AppendUint appends the low width bytes of v to b in the engine's byte order.
// width must be 1, 2, 4 or 8; v is truncated to that width.
func AppendUint(engine EndianEngine, b []byte, v uint64, width int) []byte {
	switch width {
	case 1:
		return append(b, byte(v))
	case 2:
		return engine.AppendUint16(b, uint16(v)) //nolint:gosec
	case 4:
		return engine.AppendUint32(b, uint32(v)) //nolint:gosec
	case 8:
		return engine.AppendUint64(b, v)
	default:
		panic("endian: invalid width")
	}
}

// Uint reads an unsigned integer of the given width from the front of b.
// width must be 1, 2, 4 or 8 and b must hold at least width bytes.
func Uint(engine EndianEngine, b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(engine.Uint16(b))
	case 4:
		return uint64(engine.Uint32(b))
	case 8:
		return engine.Uint64(b)
	default:
		panic("endian: invalid width")
	}
}
