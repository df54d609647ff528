package main

import (
	"fmt"
	"io"

	"github.com/arloliu/bytetrain"
	"github.com/arloliu/bytetrain/encoding"
)

func runDump(cfg config, stdout io.Writer) error {
	dec, closer, err := bytetrain.OpenFile(cfg.path, cfg.compression)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.messages {
		return dumpMessages(cfg, dec, stdout)
	}

	count := 0
	for unit, err := range dec.All() {
		if err != nil {
			return fmt.Errorf("dump %s: %w", cfg.path, err)
		}
		fmt.Fprintln(stdout, unit)
		count++
	}

	cfg.logger.Info("stream dumped", "path", cfg.path, "units", count, "bytes", dec.Offset())

	return nil
}

func dumpMessages(cfg config, dec *encoding.Decoder, stdout io.Writer) error {
	reader, err := encoding.NewMessageReader(dec)
	if err != nil {
		return err
	}

	count := 0
	for msg, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("dump %s: %w", cfg.path, err)
		}
		fmt.Fprintln(stdout, msg)
		count++
	}

	cfg.logger.Info("stream dumped", "path", cfg.path, "messages", count, "bytes", dec.Offset())

	return nil
}
