// btdemo writes a fixed sequence of bytetrain units to a file and dumps
// bytetrain files back as one unit per line.
//
// Two subcommands:
//
// write: encodes every unit kind (the four scalars, three buffers of
// pseudo-random bytes spanning three length classes, a chain handler, and
// an array handler ended by a break group) into --out, optionally
// block-compressed.
//
// dump: decodes --in and prints each unit, or with --messages each
// assembled message; buffers are summarized by length.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/arloliu/bytetrain/format"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// config is the parsed command line shared by both subcommands.
type config struct {
	path        string
	seed        uint64
	compression format.CompressionType
	messages    bool
	logger      *slog.Logger
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printHelp(stderr, nil)
		return errors.New("missing subcommand")
	}

	command, args := args[0], args[1:]
	switch command {
	case "write", "dump":
	case "help", "-h", "--help":
		printHelp(stderr, nil)
		return nil
	default:
		return fmt.Errorf("unknown subcommand %q", command)
	}

	var path, compression, logLevel string
	var seed uint64
	var messages bool

	flagSet := pflag.NewFlagSet("btdemo "+command, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {}
	if command == "write" {
		flagSet.StringVar(&path, "out", "", "file to write the unit sequence to")
		flagSet.Uint64Var(&seed, "seed", 0, "seed for the buffer payloads (0 picks one from the clock)")
	} else {
		flagSet.StringVar(&path, "in", "", "file to decode")
		flagSet.BoolVar(&messages, "messages", false, "assemble handlers and break groups into messages")
	}
	flagSet.StringVar(&compression, "compression", "none", "block compression: none, zstd, s2 or lz4")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if path == "" {
		if command == "write" {
			return errors.New("--out is required")
		}
		return errors.New("--in is required")
	}

	ct, err := format.ParseCompressionType(compression)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}

	cfg := config{
		path:        path,
		seed:        seed,
		compression: ct,
		messages:    messages,
		logger:      slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	if command == "write" {
		return runWrite(cfg)
	}

	return runDump(cfg, stdout)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, strings.TrimLeft(`
btdemo writes and dumps bytetrain unit streams.

Usage:
  btdemo write --out FILE [--seed N] [--compression TYPE]
  btdemo dump --in FILE [--compression TYPE] [--messages]

Examples:
  # Write the demo sequence with S2 block compression
  btdemo write --out hello.bt --compression s2

  # Print it back, one unit per line
  btdemo dump --in hello.bt --compression s2

  # Print it as messages, with chains joined and arrays grouped
  btdemo dump --in hello.bt --compression s2 --messages
`, "\n"))
	if flagSet != nil {
		fmt.Fprintln(w, "\nFlags:")
		flagSet.PrintDefaults()
	}
}
