package build

import (
	"fmt"
	"os"

	"github.com/retroenv/nesasmgo/internal/config"
	"github.com/retroenv/nesasmgo/internal/ines"
	"github.com/retroenv/retrogolib/nes/cartridge"
)

// Verify re-opens the just-written ROM file and checks its shape and
// mirroring flag against what was requested, the in-process sanity check
// substituting for the teacher's external ca65/ld65 reassembly-and-diff
// verification (internal/verification.VerifyOutput) - there is no external
// toolchain to compare against in this build direction, only the ROM bytes
// this process itself produced.
func Verify(rom []byte, cfg config.Build) error {
	if len(rom) != ines.HeaderSize+ines.PRGSize+ines.CHRSize {
		return fmt.Errorf("ROM size %d, want %d", len(rom), ines.HeaderSize+ines.PRGSize+ines.CHRSize)
	}

	f, err := os.Open(cfg.Output)
	if err != nil {
		return fmt.Errorf("reopening %s: %w", cfg.Output, err)
	}
	defer func() {
		_ = f.Close()
	}()

	cart, err := cartridge.LoadFile(f)
	if err != nil {
		return fmt.Errorf("parsing written ROM: %w", err)
	}
	if len(cart.PRG) != ines.PRGSize {
		return fmt.Errorf("written PRG size %d, want %d", len(cart.PRG), ines.PRGSize)
	}
	if len(cart.CHR) != ines.CHRSize {
		return fmt.Errorf("written CHR size %d, want %d", len(cart.CHR), ines.CHRSize)
	}

	// cartridge.MirrorMode follows the iNES control-byte-6 bit 0 encoding
	// ines.Header writes: 0 horizontal, 1 vertical.
	wantVertical := cfg.VerticalMirroring
	gotVertical := byte(cart.Mirror) == 1
	if wantVertical != gotVertical {
		return fmt.Errorf("written mirroring mismatch: want vertical=%v, got vertical=%v", wantVertical, gotVertical)
	}
	return nil
}
