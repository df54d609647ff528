// Package encoding implements the bytetrain unit encoder and decoder.
//
// A bytetrain stream is a sequence of self-delimiting units. Each unit
// starts with a one-byte tag (see the format package) followed by a payload
// whose size the tag determines. All multi-byte fields are little-endian.
//
//	BYTE           [1][u8]
//	WORD           [2][u16]
//	DWORD          [3][u32]
//	QWORD          [4][u64]
//	BYTE_BUFFER    [5][u8 len][len bytes]
//	WORD_BUFFER    [6][u16 len][len bytes]
//	DWORD_BUFFER   [7][u32 len][len bytes]
//	QWORD_BUFFER   [8][u64 len][len bytes]
//	HANDLER_BEGIN  [9][u16 magic]
//	HANDLER_END    [10]
//	BREAK          [11][u8 level][u8 count]
//
// A buffer's length field uses the smallest of the four widths that can
// hold its length (format.SelectLengthClass).
//
// # Encoding
//
// An Encoder is bound to a sink.Sink and writes each unit straight through
// to it; nothing is buffered. Every operation also exists as a function
// taking the sink explicitly, for one-off writes to a different destination:
//
//	enc := encoding.NewEncoder(sink.FromWriter(conn))
//	if err := enc.WriteHandlerBegin(format.MagicArray); err != nil {
//	    return err
//	}
//	_ = enc.WriteDWord(0xCCABBADC)
//	_ = enc.WriteBuffer(payload)
//	_ = enc.WriteHandlerEnd()
//
//	// The same unit, sent elsewhere without rebinding.
//	_ = encoding.WriteBreakTo(auditSink, 1, 1)
//
// The Encoder performs no validation: handler begin/end pairs are the
// caller's responsibility, and any error from the sink is returned as-is.
//
// # Decoding
//
// A Decoder reads units back from an io.Reader:
//
//	dec, _ := encoding.NewDecoder(f)
//	for unit, err := range dec.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(unit)
//	}
//
// When the reader reports a timeout, a Waiter installed with WithWaiter
// decides whether to keep waiting.
//
// # Messages
//
// A MessageReader sits on top of a Decoder and applies the handler rules:
// a chain handler joins its buffers into one payload, an array handler
// collects child messages, and BREAK(level, count) gathers the next count
// messages as an error group while closing level enclosing handlers.
//
//	msgs, _ := encoding.NewMessageReader(dec)
//	for msg, err := range msgs.All() {
//	    ...
//	}
package encoding
