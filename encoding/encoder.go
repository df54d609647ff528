package encoding

import (
	"errors"

	"github.com/arloliu/bytetrain/endian"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/sink"
)

// ErrUnbound is returned when an Encoder without a sink is asked to write.
var ErrUnbound = errors.New("encoding: no sink bound")

// wire is the byte order of every multi-byte field.
var wire = endian.GetLittleEndianEngine()

// Encoder writes tag-prefixed units to the sink it is bound to.
//
// Apart from the binding the Encoder holds no state: each call produces one
// complete unit, hands it to the sink and returns the sink's error
// unchanged. A failed call may leave a partial unit in the stream (a buffer
// header without its data); the Encoder does not roll back.
//
// An Encoder is not safe for concurrent use, including Bind.
type Encoder struct {
	sink sink.Sink
}

// NewEncoder returns an Encoder bound to s. A nil s yields an unbound
// Encoder whose writes fail with ErrUnbound until Bind is called.
func NewEncoder(s sink.Sink) *Encoder {
	return &Encoder{sink: s}
}

// Bind replaces the active sink. Bytes already written to the previous sink
// are unaffected; subsequent units go to s. Bind(nil) unbinds.
func (e *Encoder) Bind(s sink.Sink) {
	e.sink = s
}

// Sink returns the currently bound sink, or nil.
func (e *Encoder) Sink() sink.Sink {
	return e.sink
}

// WriteByte writes a BYTE unit: [1][v].
func (e *Encoder) WriteByte(v byte) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteByteTo(e.sink, v)
}

// WriteWord writes a WORD unit: [2][v, 2 bytes LE].
func (e *Encoder) WriteWord(v uint16) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteWordTo(e.sink, v)
}

// WriteDWord writes a DWORD unit: [3][v, 4 bytes LE].
func (e *Encoder) WriteDWord(v uint32) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteDWordTo(e.sink, v)
}

// WriteQWord writes a QWORD unit: [4][v, 8 bytes LE].
func (e *Encoder) WriteQWord(v uint64) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteQWordTo(e.sink, v)
}

// WriteBuffer writes a buffer unit whose length field uses the smallest
// length class able to hold len(p). See WriteBufferTo.
func (e *Encoder) WriteBuffer(p []byte) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteBufferTo(e.sink, p)
}

// WriteHandlerBegin writes a HANDLER_BEGIN unit: [9][magic, 2 bytes LE].
func (e *Encoder) WriteHandlerBegin(magic format.Magic) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteHandlerBeginTo(e.sink, magic)
}

// WriteHandlerEnd writes a HANDLER_END unit: [10].
func (e *Encoder) WriteHandlerEnd() error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteHandlerEndTo(e.sink)
}

// WriteBreak writes a BREAK unit: [11][level][count].
func (e *Encoder) WriteBreak(level, count uint8) error {
	if e.sink == nil {
		return ErrUnbound
	}

	return WriteBreakTo(e.sink, level, count)
}

// WriteByteTo writes a BYTE unit to s in a single sink write.
func WriteByteTo(s sink.Sink, v byte) error {
	return s.Write([]byte{byte(format.TagByte), v})
}

// WriteWordTo writes a WORD unit to s in a single sink write.
func WriteWordTo(s sink.Sink, v uint16) error {
	var unit [3]byte
	b := append(unit[:0], byte(format.TagWord))

	return s.Write(wire.AppendUint16(b, v))
}

// WriteDWordTo writes a DWORD unit to s in a single sink write.
func WriteDWordTo(s sink.Sink, v uint32) error {
	var unit [5]byte
	b := append(unit[:0], byte(format.TagDWord))

	return s.Write(wire.AppendUint32(b, v))
}

// WriteQWordTo writes a QWORD unit to s in a single sink write.
func WriteQWordTo(s sink.Sink, v uint64) error {
	var unit [9]byte
	b := append(unit[:0], byte(format.TagQWord))

	return s.Write(wire.AppendUint64(b, v))
}

// WriteBufferTo writes a buffer unit to s.
//
// The header (buffer tag and length field) goes out in one sink write and
// p in a second one, verbatim. If the header write fails, p is not written.
// An empty p produces only the header [5][0].
func WriteBufferTo(s sink.Sink, p []byte) error {
	var header [format.MaxUnitHeaderSize]byte
	if err := s.Write(appendBufferHeader(header[:0], uint64(len(p)))); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	return s.Write(p)
}

// appendBufferHeader appends the tag and length field of a buffer unit
// holding n bytes.
func appendBufferHeader(b []byte, n uint64) []byte {
	class := format.SelectLengthClass(n)
	b = append(b, byte(class.BufferTag()))

	return endian.AppendUint(wire, b, n, class.Width())
}

// WriteHandlerBeginTo writes a HANDLER_BEGIN unit to s.
func WriteHandlerBeginTo(s sink.Sink, magic format.Magic) error {
	var unit [3]byte
	b := append(unit[:0], byte(format.TagHandlerBegin))

	return s.Write(wire.AppendUint16(b, uint16(magic)))
}

// WriteHandlerEndTo writes a HANDLER_END unit to s.
func WriteHandlerEndTo(s sink.Sink) error {
	return s.Write([]byte{byte(format.TagHandlerEnd)})
}

// WriteBreakTo writes a BREAK unit to s.
func WriteBreakTo(s sink.Sink, level, count uint8) error {
	return s.Write([]byte{byte(format.TagBreak), level, count})
}
