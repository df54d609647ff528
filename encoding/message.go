package encoding

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/internal/options"
)

// DefaultMaxDepth bounds how deeply handlers may nest inside one message.
const DefaultMaxDepth = 32

var (
	// ErrUnexpectedUnit reports a unit that cannot appear where it was read,
	// such as a scalar inside a chain or HANDLER_END outside any handler.
	ErrUnexpectedUnit = errors.New("encoding: unexpected unit")
	// ErrUnknownMagic reports a HANDLER_BEGIN whose magic names no handler.
	ErrUnknownMagic = errors.New("encoding: unknown handler magic")
	// ErrNestedBreak reports a BREAK inside the group of another BREAK.
	ErrNestedBreak = errors.New("encoding: nested break")
	// ErrBreakLevel reports a BREAK that closes more handlers than are open,
	// or none while one is open.
	ErrBreakLevel = errors.New("encoding: break level does not match handler depth")
	// ErrTooDeep reports handlers nested beyond the configured depth.
	ErrTooDeep = errors.New("encoding: handlers nested too deeply")
)

// MessageKind classifies a Message. Scalar kinds share their codes with the
// scalar tags.
type MessageKind uint8

const (
	KindByte   MessageKind = 1
	KindWord   MessageKind = 2
	KindDWord  MessageKind = 3
	KindQWord  MessageKind = 4
	KindBuffer MessageKind = 5
	KindArray  MessageKind = 6
	KindError  MessageKind = 7
)

func (k MessageKind) String() string {
	switch k {
	case KindByte:
		return "BYTE"
	case KindWord:
		return "WORD"
	case KindDWord:
		return "DWORD"
	case KindQWord:
		return "QWORD"
	case KindBuffer:
		return "BUFFER"
	case KindArray:
		return "ARRAY"
	case KindError:
		return "ERROR"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(k))
	}
}

// Break is the error group introduced by a BREAK unit: the Count messages
// that follow it.
type Break struct {
	Level uint8
	Items []Message
}

// Message is one value assembled from units.
//
// A chain handler yields a KindBuffer message holding its buffers joined in
// order. An array handler yields KindArray with one item per child message.
// A BREAK outside any handler yields KindError; inside a handler the group is
// attached to the chain or array it cut short.
type Message struct {
	Kind  MessageKind
	Value uint64    // scalars
	Data  []byte    // KindBuffer
	Items []Message // KindArray
	Break *Break    // KindError, or the group that ended a handler
}

func (m Message) String() string {
	var b strings.Builder
	switch m.Kind {
	case KindBuffer:
		fmt.Fprintf(&b, "%s len=%d", m.Kind, len(m.Data))
	case KindArray:
		fmt.Fprintf(&b, "%s [%s]", m.Kind, joinMessages(m.Items))
	case KindError:
		b.WriteString(m.Kind.String())
	default:
		fmt.Fprintf(&b, "%s %d (0x%x)", m.Kind, m.Value, m.Value)
	}

	if m.Break != nil {
		if m.Kind != KindError {
			b.WriteString(" break")
		}
		fmt.Fprintf(&b, " level=%d [%s]", m.Break.Level, joinMessages(m.Break.Items))
	}

	return b.String()
}

func joinMessages(msgs []Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.String()
	}

	return strings.Join(parts, ", ")
}

// MessageReader assembles messages from the units of a Decoder.
//
// Handler rules:
//   - Chain (format.MagicChain): buffer units until HANDLER_END or BREAK;
//     any other unit is ErrUnexpectedUnit.
//   - Array (format.MagicArray): child messages until HANDLER_END or BREAK.
//   - BREAK(level, count): the next count messages form its group. Inside
//     handlers it closes level of them, innermost first, so level must be
//     between 1 and the current depth. Outside handlers level must be 0.
//     A BREAK inside a group is ErrNestedBreak.
//
// A MessageReader is not safe for concurrent use, and the Decoder must not
// be read directly while it is in use.
type MessageReader struct {
	units    *Decoder
	maxDepth int
}

// MessageReaderOption configures a MessageReader.
type MessageReaderOption = options.Option[*MessageReader]

// WithMaxDepth sets how deeply handlers may nest. Default: DefaultMaxDepth.
func WithMaxDepth(depth int) MessageReaderOption {
	return options.New(func(r *MessageReader) error {
		if depth <= 0 {
			return errors.New("max depth must be positive")
		}
		r.maxDepth = depth

		return nil
	})
}

// NewMessageReader returns a MessageReader over the units of d.
func NewMessageReader(d *Decoder, opts ...MessageReaderOption) (*MessageReader, error) {
	r := &MessageReader{
		units:    d,
		maxDepth: DefaultMaxDepth,
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Next reads the next message. It returns io.EOF when the stream ends
// cleanly between messages and ErrTruncated when it ends inside one.
func (r *MessageReader) Next() (Message, error) {
	first, err := r.units.Next()
	if err != nil {
		return Message{}, err
	}

	msg, _, err := r.message(first, 0, false)
	if err != nil {
		return Message{}, err
	}

	return msg, nil
}

// All iterates over the remaining messages. Iteration stops after the first
// error, which is yielded; a clean end of stream yields no error.
func (r *MessageReader) All() iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(msg, err) || err != nil {
				return
			}
		}
	}
}

// unit reads a unit that must exist because a message is still open.
func (r *MessageReader) unit() (Unit, error) {
	u, err := r.units.Next()
	if errors.Is(err, io.EOF) {
		return Unit{}, fmt.Errorf("message open at offset %d: %w", r.units.Offset(), ErrTruncated)
	}

	return u, err
}

// message builds the message starting with u. depth is the number of
// handlers already open around it. The returned count is how many more
// enclosing handlers a BREAK still has to close.
func (r *MessageReader) message(u Unit, depth int, inBreak bool) (Message, int, error) {
	switch tag := u.Tag; {
	case tag.IsScalar():
		return Message{Kind: MessageKind(tag), Value: u.Value}, 0, nil

	case tag.IsBuffer():
		return Message{Kind: KindBuffer, Data: u.Data}, 0, nil

	case tag == format.TagHandlerBegin:
		depth++
		if depth > r.maxDepth {
			return Message{}, 0, fmt.Errorf("%w: depth %d", ErrTooDeep, depth)
		}
		switch u.Magic {
		case format.MagicChain:
			return r.chain(depth, inBreak)
		case format.MagicArray:
			return r.array(depth, inBreak)
		default:
			return Message{}, 0, fmt.Errorf("%w: %s", ErrUnknownMagic, u.Magic)
		}

	case tag == format.TagBreak:
		group, err := r.breakGroup(u, inBreak)
		if err != nil {
			return Message{}, 0, err
		}
		if group.Level != 0 {
			return Message{}, 0, fmt.Errorf("%w: level %d outside any handler", ErrBreakLevel, group.Level)
		}

		return Message{Kind: KindError, Break: group}, 0, nil

	default:
		return Message{}, 0, fmt.Errorf("%w: %s outside a handler", ErrUnexpectedUnit, tag)
	}
}

func (r *MessageReader) chain(depth int, inBreak bool) (Message, int, error) {
	msg := Message{Kind: KindBuffer, Data: []byte{}}
	for {
		u, err := r.unit()
		if err != nil {
			return Message{}, 0, err
		}

		switch {
		case u.Tag.IsBuffer():
			if uint64(len(msg.Data))+uint64(len(u.Data)) > r.units.maxBufferLength {
				return Message{}, 0, fmt.Errorf("%w: chain exceeds %d bytes", ErrBufferTooLarge, r.units.maxBufferLength)
			}
			msg.Data = append(msg.Data, u.Data...)
		case u.Tag == format.TagHandlerEnd:
			return msg, 0, nil
		case u.Tag == format.TagBreak:
			pending, err := r.cut(&msg, u, depth, inBreak)
			return msg, pending, err
		default:
			return Message{}, 0, fmt.Errorf("%w: %s in chain", ErrUnexpectedUnit, u.Tag)
		}
	}
}

func (r *MessageReader) array(depth int, inBreak bool) (Message, int, error) {
	msg := Message{Kind: KindArray}
	for {
		u, err := r.unit()
		if err != nil {
			return Message{}, 0, err
		}

		switch u.Tag {
		case format.TagHandlerEnd:
			return msg, 0, nil
		case format.TagBreak:
			pending, err := r.cut(&msg, u, depth, inBreak)
			return msg, pending, err
		}

		item, pending, err := r.message(u, depth, inBreak)
		if err != nil {
			return Message{}, 0, err
		}
		msg.Items = append(msg.Items, item)
		if pending > 0 {
			return msg, pending - 1, nil
		}
	}
}

// cut attaches the group of the BREAK u to the handler msg at depth and
// returns how many enclosing handlers remain to be closed.
func (r *MessageReader) cut(msg *Message, u Unit, depth int, inBreak bool) (int, error) {
	group, err := r.breakGroup(u, inBreak)
	if err != nil {
		return 0, err
	}
	if group.Level == 0 || int(group.Level) > depth {
		return 0, fmt.Errorf("%w: level %d at depth %d", ErrBreakLevel, group.Level, depth)
	}
	msg.Break = group

	return int(group.Level) - 1, nil
}

func (r *MessageReader) breakGroup(u Unit, inBreak bool) (*Break, error) {
	if inBreak {
		return nil, ErrNestedBreak
	}

	group := &Break{Level: u.Level, Items: make([]Message, 0, u.Count)}
	for range u.Count {
		next, err := r.unit()
		if err != nil {
			return nil, err
		}
		item, _, err := r.message(next, 0, true)
		if err != nil {
			return nil, err
		}
		group.Items = append(group.Items, item)
	}

	return group, nil
}
