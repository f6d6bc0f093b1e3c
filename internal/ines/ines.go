// Package ines builds the final iNES ROM image from linked PRG/CHR byte
// regions, grounded on the teacher's ca65.FileWriter header layout
// (internal/ca65/file.go, internal/assembler/ca65/file.go) and its use of
// retrogolib's cartridge.ControlBytes for the iNES flag bytes.
package ines

import (
	"fmt"

	"github.com/retroenv/retrogolib/nes/cartridge"
)

// Fixed shape for the single 32 KiB PRG + 8 KiB CHR configuration this
// toolchain targets (spec.md's explicit non-goal of multi-bank support).
const (
	HeaderSize = 16
	PRGSize    = 32 * 1024
	CHRSize    = 8 * 1024

	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
)

// magic is the fixed iNES preamble: "NES" followed by the MS-DOS EOF byte.
var magic = [4]byte{0x4E, 0x45, 0x53, 0x1A}

// Header builds the 16-byte iNES header for mapper 0, no battery, no
// trainer, 2 PRG banks and 1 CHR bank. vertical sets control byte 6's
// mirroring bit.
func Header(vertical bool) []byte {
	var mirror byte
	if vertical {
		mirror = 1
	}
	control1, control2 := cartridge.ControlBytes(false, mirror, 0, false)

	header := make([]byte, HeaderSize)
	copy(header[:4], magic[:])
	header[4] = PRGSize / prgBankSize
	header[5] = CHRSize / chrBankSize
	header[6] = control1
	header[7] = control2
	return header
}

// Build concatenates header, prg and chr into the final ROM image. prg and
// chr must already be padded to their fixed sizes by the linker; Build
// only validates the shape and concatenates.
func Build(header, prg, chr []byte) ([]byte, error) {
	if len(header) != HeaderSize {
		return nil, fmt.Errorf("header size %d, want %d", len(header), HeaderSize)
	}
	if len(prg) != PRGSize {
		return nil, fmt.Errorf("PRG size %d, want %d", len(prg), PRGSize)
	}
	if len(chr) != CHRSize {
		return nil, fmt.Errorf("CHR size %d, want %d", len(chr), CHRSize)
	}

	rom := make([]byte, 0, HeaderSize+PRGSize+CHRSize)
	rom = append(rom, header...)
	rom = append(rom, prg...)
	rom = append(rom, chr...)
	return rom, nil
}
