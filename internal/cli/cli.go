// Package cli handles command line interface logic: flag parsing into
// internal/config.Build, grounded in the teacher's own internal/cli
// package shape (flag.NewFlagSet, a UsageError carrying ShowUsage) and
// the -i/-o/-verify/-debug/-q flag-naming convention of its root main.go.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/nesasmgo/internal/config"
)

// ParseFlags parses command line flags into a build configuration.
func ParseFlags(args []string) (config.Build, error) {
	flags := flag.NewFlagSet("nesasmgo", flag.ContinueOnError)
	var cfg config.Build

	flags.StringVar(&cfg.Input, "i", "", "name of the input ca65-subset assembly source file")
	flags.StringVar(&cfg.CHR, "chr", "", "name of the CHR/data assembly source file (segment-scoped .byte runs)")
	flags.StringVar(&cfg.Output, "o", "", "name of the output .nes file")
	flags.BoolVar(&cfg.VerticalMirroring, "mirror", false, "use vertical nametable mirroring instead of horizontal")
	flags.StringVar(&cfg.DumpAsm, "dump-asm", "", "write an annotated ca65-style listing of the linked ROM to this path")
	flags.BoolVar(&cfg.Verify, "verify", false, "re-parse the written ROM and check its shape and mirroring flag")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&cfg.Quiet, "q", false, "perform operations quietly")

	if err := flags.Parse(args); err != nil {
		return cfg, &UsageError{flags: flags, msg: err.Error()}
	}

	if cfg.Input == "" {
		return cfg, &UsageError{flags: flags, msg: "no input file given"}
	}
	if cfg.Output == "" {
		return cfg, &UsageError{flags: flags, msg: "no output file given"}
	}

	return cfg, nil
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Fprintf(os.Stderr, "usage: nesasmgo -i <input.s> -o <output.nes> [options]\n\n")
	e.flags.PrintDefaults()
	fmt.Fprintln(os.Stderr)
}
