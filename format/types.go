package format

import "fmt"

type (
	Tag             uint8
	Magic           uint16
	LengthClass     uint8
	CompressionType uint8
)

const (
	TagByte         Tag = 0x1 // TagByte is followed by a uint8 value.
	TagWord         Tag = 0x2 // TagWord is followed by a uint16 value.
	TagDWord        Tag = 0x3 // TagDWord is followed by a uint32 value.
	TagQWord        Tag = 0x4 // TagQWord is followed by a uint64 value.
	TagByteBuffer   Tag = 0x5 // TagByteBuffer is followed by a uint8 length and the buffer.
	TagWordBuffer   Tag = 0x6 // TagWordBuffer is followed by a uint16 length and the buffer.
	TagDWordBuffer  Tag = 0x7 // TagDWordBuffer is followed by a uint32 length and the buffer.
	TagQWordBuffer  Tag = 0x8 // TagQWordBuffer is followed by a uint64 length and the buffer.
	TagHandlerBegin Tag = 0x9 // TagHandlerBegin is followed by a uint16 magic.
	TagHandlerEnd   Tag = 0xA // TagHandlerEnd has no payload.
	TagBreak        Tag = 0xB // TagBreak is followed by a uint8 level and a uint8 count.

	MagicChain Magic = 0x1 // MagicChain opens a chain of buffers.
	MagicArray Magic = 0x2 // MagicArray opens a struct or array.

	LengthClass1 LengthClass = 1
	LengthClass2 LengthClass = 2
	LengthClass4 LengthClass = 4
	LengthClass8 LengthClass = 8

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// MaxUnitHeaderSize is the largest header a unit can have:
// one tag byte plus an 8-byte scalar or length field.
const MaxUnitHeaderSize = 9

// SelectLengthClass returns the smallest length class able to represent n
// as an unsigned integer.
func SelectLengthClass(n uint64) LengthClass {
	switch {
	case n <= 0xFF:
		return LengthClass1
	case n <= 0xFFFF:
		return LengthClass2
	case n <= 0xFFFFFFFF:
		return LengthClass4
	default:
		return LengthClass8
	}
}

// Width returns the number of bytes used by the length field.
func (c LengthClass) Width() int {
	return int(c)
}

// BufferTag returns the buffer tag announcing a length field of class c.
// It returns 0 for an invalid class.
func (c LengthClass) BufferTag() Tag {
	switch c {
	case LengthClass1:
		return TagByteBuffer
	case LengthClass2:
		return TagWordBuffer
	case LengthClass4:
		return TagDWordBuffer
	case LengthClass8:
		return TagQWordBuffer
	default:
		return 0
	}
}

// LengthClassOf returns the length class announced by a buffer tag.
func LengthClassOf(t Tag) (LengthClass, bool) {
	switch t {
	case TagByteBuffer:
		return LengthClass1, true
	case TagWordBuffer:
		return LengthClass2, true
	case TagDWordBuffer:
		return LengthClass4, true
	case TagQWordBuffer:
		return LengthClass8, true
	default:
		return 0, false
	}
}

// IsValid reports whether t belongs to the tag vocabulary.
func (t Tag) IsValid() bool {
	return t >= TagByte && t <= TagBreak
}

// IsScalar reports whether t announces a fixed-width integer.
func (t Tag) IsScalar() bool {
	return t >= TagByte && t <= TagQWord
}

// IsBuffer reports whether t announces a length-prefixed buffer.
func (t Tag) IsBuffer() bool {
	return t >= TagByteBuffer && t <= TagQWordBuffer
}

// HeaderSize returns the number of bytes a unit with tag t occupies before
// any buffer data: the tag byte plus its fixed payload or length field.
func (t Tag) HeaderSize() int {
	switch t {
	case TagByte, TagByteBuffer:
		return 2
	case TagWord, TagWordBuffer, TagHandlerBegin, TagBreak:
		return 3
	case TagDWord, TagDWordBuffer:
		return 5
	case TagQWord, TagQWordBuffer:
		return 9
	case TagHandlerEnd:
		return 1
	default:
		return 0
	}
}

func (t Tag) String() string {
	switch t {
	case TagByte:
		return "BYTE"
	case TagWord:
		return "WORD"
	case TagDWord:
		return "DWORD"
	case TagQWord:
		return "QWORD"
	case TagByteBuffer:
		return "BYTE_BUFFER"
	case TagWordBuffer:
		return "WORD_BUFFER"
	case TagDWordBuffer:
		return "DWORD_BUFFER"
	case TagQWordBuffer:
		return "QWORD_BUFFER"
	case TagHandlerBegin:
		return "HANDLER_BEGIN"
	case TagHandlerEnd:
		return "HANDLER_END"
	case TagBreak:
		return "BREAK"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

func (m Magic) String() string {
	switch m {
	case MagicChain:
		return "Chain"
	case MagicArray:
		return "Array"
	default:
		return fmt.Sprintf("Magic(%d)", uint16(m))
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a case-sensitive lowercase compression name
// ("none", "zstd", "s2", "lz4").
func ParseCompressionType(name string) (CompressionType, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}
