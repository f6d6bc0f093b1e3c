// Package build orchestrates one end-to-end ROM build: read sources,
// assemble, link, and write the iNES file. It mirrors the teacher's
// internal/pipeline.Pipeline.Execute in shape - a single entry point taking
// a context.Context and configuration, internally wiring the concrete
// stages together - generalized from disassembly to assembly/linking.
package build

import (
	"context"
	"fmt"
	"os"

	"github.com/retroenv/nesasmgo/internal/assembler"
	"github.com/retroenv/nesasmgo/internal/buildlog"
	"github.com/retroenv/nesasmgo/internal/config"
	"github.com/retroenv/nesasmgo/internal/dump"
	"github.com/retroenv/nesasmgo/internal/linker"
	"github.com/retroenv/nesasmgo/internal/reader"
	"github.com/retroenv/nesasmgo/internal/runtime"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/retrogolib/log"
)

// Run assembles cfg.Input (and cfg.CHR, if given), links the result against
// methods, and writes the finished ROM to cfg.Output. ctx is threaded
// through purely for the teacher's cancellation-propagation convention
// (internal/pipeline.Pipeline.Execute); nothing here selects on ctx.Done()
// mid-build, since assembling and linking are synchronous, in-memory, and
// fast enough that no intermediate stage needs to observe cancellation -
// matching pipeline.Execute's own ctx, which likewise only matters to the
// one step that shells out to an external process.
func Run(ctx context.Context, cfg config.Build, methods *runtime.Table, logger *buildlog.Logger) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(cfg.Input) //nolint:gosec // cfg.Input is an explicit build input
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", cfg.Input, err)
	}

	registry, symbols, err := assembler.AssembleWithConstants(string(source), cfg.Input, logger, runtime.RegisterConstants())
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", cfg.Input, err)
	}

	if cfg.CHR != "" {
		chrRegistry, err := reader.ReadFile(cfg.CHR)
		if err != nil {
			return nil, fmt.Errorf("reading CHR source %s: %w", cfg.CHR, err)
		}
		mergeRegistry(registry, chrRegistry)
	}

	linkCfg := linker.Config{VerticalMirroring: cfg.VerticalMirroring}
	if methods != nil {
		linkCfg.RuntimeAddresses = methods.Addresses()
	}

	rom, err := linker.Link(registry, symbols, linkCfg)
	if err != nil {
		return nil, fmt.Errorf("linking %s: %w", cfg.Input, err)
	}

	if cfg.DumpAsm != "" {
		listing := dump.Listing(registry)
		if err := os.WriteFile(cfg.DumpAsm, []byte(listing), 0o644); err != nil { //nolint:gosec // debug aid, not the ROM itself
			return nil, fmt.Errorf("writing debug dump %s: %w", cfg.DumpAsm, err)
		}
	}

	if err := os.WriteFile(cfg.Output, rom, 0o644); err != nil { //nolint:gosec // standard ROM output permissions
		return nil, fmt.Errorf("writing output %s: %w", cfg.Output, err)
	}

	if cfg.Verify {
		if err := Verify(rom, cfg); err != nil {
			return nil, fmt.Errorf("verifying %s: %w", cfg.Output, err)
		}
		logger.Info("Output file verified", log.String("file", cfg.Output))
	}

	return rom, nil
}

// mergeRegistry appends every block of src onto the matching segment of
// dst, in src's source order. Used to fold the reader's CHR/data-only
// registry into the assembler's code registry before linking; the reader
// never declares symbols, so no symtab merge is needed alongside it.
func mergeRegistry(dst, src *segment.Registry) {
	for _, name := range src.Order() {
		srcSeg := src.Get(name)
		dstSeg := dst.Get(name)
		for _, block := range srcSeg.Blocks {
			dstSeg.Append(block)
		}
	}
}
