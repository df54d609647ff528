package encoding

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/bytetrain/endian"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/internal/options"
	"github.com/arloliu/bytetrain/sink"
)

// DefaultMaxBufferLength bounds the buffer length a Decoder accepts before
// allocating.
const DefaultMaxBufferLength = 64 * 1024 * 1024

var (
	// ErrUnknownTag reports a unit tag outside the vocabulary.
	ErrUnknownTag = errors.New("encoding: unknown tag")
	// ErrTruncated reports a stream that ends inside a unit.
	ErrTruncated = fmt.Errorf("encoding: truncated unit: %w", io.ErrUnexpectedEOF)
	// ErrBufferTooLarge reports a declared buffer length above the limit.
	ErrBufferTooLarge = errors.New("encoding: buffer length exceeds limit")
	// ErrWaitOver reports a source timeout that the Waiter declined to retry.
	ErrWaitOver = errors.New("encoding: source timed out")
)

// Waiter decides whether a Decoder retries a read that timed out.
type Waiter interface {
	// Wait blocks as long as the implementation sees fit and reports
	// whether the read should be retried.
	Wait() bool
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func() bool

// Wait calls f.
func (f WaiterFunc) Wait() bool { return f() }

// Unit is one decoded unit. Only the fields relevant to Tag are set.
type Unit struct {
	Tag   format.Tag
	Value uint64       // BYTE, WORD, DWORD, QWORD
	Data  []byte       // buffer tags; owned by the caller
	Magic format.Magic // HANDLER_BEGIN
	Level uint8        // BREAK
	Count uint8        // BREAK
}

// Len returns the encoded size of the unit in bytes.
func (u Unit) Len() int {
	return u.Tag.HeaderSize() + len(u.Data)
}

func (u Unit) String() string {
	switch {
	case u.Tag.IsScalar():
		return fmt.Sprintf("%s %d (0x%x)", u.Tag, u.Value, u.Value)
	case u.Tag.IsBuffer():
		return fmt.Sprintf("%s len=%d", u.Tag, len(u.Data))
	case u.Tag == format.TagHandlerBegin:
		return fmt.Sprintf("%s magic=%s", u.Tag, u.Magic)
	case u.Tag == format.TagBreak:
		return fmt.Sprintf("%s level=%d count=%d", u.Tag, u.Level, u.Count)
	default:
		return u.Tag.String()
	}
}

// Decoder reads units from a byte stream produced by Encoder.
//
// It works one unit at a time and does not interpret handler nesting or
// break semantics; MessageReader does that on top of it.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	src             io.Reader
	waiter          Waiter
	maxBufferLength uint64
	offset          int64
	scratch         [format.MaxUnitHeaderSize]byte
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*Decoder]

// WithWaiter installs a Waiter consulted when the source reports a timeout
// (sink.IsTimeout). Without one, a timeout ends decoding with ErrWaitOver.
func WithWaiter(w Waiter) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.waiter = w
	})
}

// WithMaxBufferLength sets the largest buffer length accepted. Default:
// DefaultMaxBufferLength.
func WithMaxBufferLength(n uint64) DecoderOption {
	return options.New(func(d *Decoder) error {
		if n == 0 {
			return errors.New("max buffer length must be positive")
		}
		d.maxBufferLength = n

		return nil
	})
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{
		src:             r,
		maxBufferLength: DefaultMaxBufferLength,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// Offset returns the number of bytes consumed from the source.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next decodes the next unit.
//
// It returns io.EOF when the stream ends cleanly between units and
// ErrTruncated when it ends inside one.
func (d *Decoder) Next() (Unit, error) {
	start := d.offset
	if err := d.read(d.scratch[:1], true); err != nil {
		return Unit{}, err
	}

	unit := Unit{Tag: format.Tag(d.scratch[0])}
	switch tag := unit.Tag; {
	case tag.IsScalar():
		width := tag.HeaderSize() - 1
		if err := d.read(d.scratch[:width], false); err != nil {
			return Unit{}, err
		}
		unit.Value = endian.Uint(wire, d.scratch[:width], width)

	case tag.IsBuffer():
		class, _ := format.LengthClassOf(tag)
		width := class.Width()
		if err := d.read(d.scratch[:width], false); err != nil {
			return Unit{}, err
		}
		length := endian.Uint(wire, d.scratch[:width], width)
		if length > d.maxBufferLength {
			return Unit{}, fmt.Errorf("%w: %d > %d at offset %d", ErrBufferTooLarge, length, d.maxBufferLength, start)
		}
		unit.Data = make([]byte, length)
		if err := d.read(unit.Data, false); err != nil {
			return Unit{}, err
		}

	case tag == format.TagHandlerBegin:
		if err := d.read(d.scratch[:2], false); err != nil {
			return Unit{}, err
		}
		unit.Magic = format.Magic(wire.Uint16(d.scratch[:2]))

	case tag == format.TagHandlerEnd:

	case tag == format.TagBreak:
		if err := d.read(d.scratch[:2], false); err != nil {
			return Unit{}, err
		}
		unit.Level, unit.Count = d.scratch[0], d.scratch[1]

	default:
		return Unit{}, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnknownTag, uint8(tag), start)
	}

	return unit, nil
}

// All iterates over the remaining units. Iteration stops after the first
// error, which is yielded; a clean end of stream yields no error.
func (d *Decoder) All() iter.Seq2[Unit, error] {
	return func(yield func(Unit, error) bool) {
		for {
			unit, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(unit, err) || err != nil {
				return
			}
		}
	}
}

// read fills p from the source, retrying timeouts the Waiter allows.
// unitStart marks the first byte of a unit, where end of stream is clean.
func (d *Decoder) read(p []byte, unitStart bool) error {
	filled := 0
	for filled < len(p) {
		n, err := d.src.Read(p[filled:])
		filled += n
		d.offset += int64(n)

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if filled == len(p) {
				return nil
			}
			if unitStart && filled == 0 {
				return io.EOF
			}

			return ErrTruncated
		case sink.IsTimeout(err):
			if d.waiter != nil && d.waiter.Wait() {
				continue
			}

			return fmt.Errorf("%w: %w", ErrWaitOver, err)
		default:
			return err
		}
	}

	return nil
}
