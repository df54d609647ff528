package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/arloliu/bytetrain/encoding"
	"github.com/arloliu/bytetrain/format"
	"github.com/arloliu/bytetrain/sink"
)

// payloadSizes exercise the byte, word and dword length classes.
var payloadSizes = []int{0xF3, 0xFF3, 0xFFFF3}

// breakReason is the single member of the group that ends the array.
const breakReason = 0x0BAD

func runWrite(cfg config) error {
	seed := cfg.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	file, err := sink.Create(cfg.path, sink.WithCompression(cfg.compression))
	if err != nil {
		return err
	}

	meter := sink.NewMeter(file)
	enc := encoding.NewEncoder(meter)

	err = writeSequence(enc, rand.New(rand.NewPCG(seed, seed)), cfg)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", cfg.path, err)
	}

	cfg.logger.Info("stream written",
		"path", cfg.path,
		"compression", cfg.compression,
		"seed", seed,
		"writes", meter.Writes(),
		"bytes", meter.Bytes(),
		"fingerprint", fmt.Sprintf("%016x", meter.Sum64()),
	)

	return nil
}

// step is one unit of the demo sequence.
type step struct {
	name  string
	write func() error
}

// writeSequence encodes the demo units in order, stopping at the first
// failed write.
func writeSequence(enc *encoding.Encoder, rnd *rand.Rand, cfg config) error {
	steps := []step{
		{"byte", func() error { return enc.WriteByte(0x32) }},
		{"word", func() error { return enc.WriteWord(0xFC16) }},
		{"dword", func() error { return enc.WriteDWord(0xCCABBADC) }},
		{"qword", func() error { return enc.WriteQWord(0xDDDDDDDDFFFFFFFF) }},
	}
	for _, size := range payloadSizes {
		payload := randomBytes(rnd, size)
		steps = append(steps, step{fmt.Sprintf("buffer[%d]", size), func() error { return enc.WriteBuffer(payload) }})
	}
	steps = append(steps,
		step{"chain begin", func() error { return enc.WriteHandlerBegin(format.MagicChain) }},
		step{"chain part", func() error { return enc.WriteBuffer([]byte("bytetrain ")) }},
		step{"chain part", func() error { return enc.WriteBuffer([]byte("chain")) }},
		step{"chain end", enc.WriteHandlerEnd},
		step{"array begin", func() error { return enc.WriteHandlerBegin(format.MagicArray) }},
		step{"array item", func() error { return enc.WriteByte(1) }},
		step{"array item", func() error { return enc.WriteByte(2) }},
		step{"break", func() error { return enc.WriteBreak(1, 1) }},
		step{"break reason", func() error { return enc.WriteWord(breakReason) }},
	)

	for _, s := range steps {
		if err := s.write(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		cfg.logger.Debug("unit written", "unit", s.name)
	}

	return nil
}

func randomBytes(rnd *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rnd.Uint32())
	}

	return b
}
