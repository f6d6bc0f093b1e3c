// Package m6502 provides the 6502 opcode table, addressing modes and
// instruction metadata used by the assembler, linker and codegen adapter. It
// is a thin shell around retrogolib/arch/cpu/m6502's opcode authority,
// inverted for assembly (mnemonic, mode) -> byte rather than disassembly
// byte -> (mnemonic, mode).
package m6502

import (
	retrom6502 "github.com/retroenv/retrogolib/arch/cpu/m6502"
)

// AddressingMode identifies how a 6502 instruction's operand is encoded.
// Defined locally (rather than aliased) so it can carry the Size method the
// assembler needs; every value below is taken directly from retrogolib's own
// enumeration, so the underlying ordinals always match retrogolib's.
type AddressingMode retrom6502.AddressingMode

// Addressing modes supported by the assembler, matching the ca65 subset
// named in the accepted operand syntax. Each constant mirrors the retrogolib
// addressing mode of the same name.
const (
	ImpliedAddressing     = AddressingMode(retrom6502.ImpliedAddressing)
	AccumulatorAddressing = AddressingMode(retrom6502.AccumulatorAddressing)
	ImmediateAddressing   = AddressingMode(retrom6502.ImmediateAddressing)
	AbsoluteAddressing    = AddressingMode(retrom6502.AbsoluteAddressing)
	AbsoluteXAddressing   = AddressingMode(retrom6502.AbsoluteXAddressing)
	AbsoluteYAddressing   = AddressingMode(retrom6502.AbsoluteYAddressing)
	ZeroPageAddressing    = AddressingMode(retrom6502.ZeroPageAddressing)
	ZeroPageXAddressing   = AddressingMode(retrom6502.ZeroPageXAddressing)
	ZeroPageYAddressing   = AddressingMode(retrom6502.ZeroPageYAddressing)
	RelativeAddressing    = AddressingMode(retrom6502.RelativeAddressing)
	IndirectAddressing    = AddressingMode(retrom6502.IndirectAddressing)
	IndirectXAddressing   = AddressingMode(retrom6502.IndirectXAddressing)
	IndirectYAddressing   = AddressingMode(retrom6502.IndirectYAddressing)
)

// Retrogolib converts back to retrogolib's own type, for call sites (such as
// arch/nes/parameter operand formatting) that expect it directly.
func (m AddressingMode) Retrogolib() retrom6502.AddressingMode {
	return retrom6502.AddressingMode(m)
}

// Size returns the instruction byte length for instructions using this mode;
// ok is false for a mode with no defined length. The mode alone determines
// the length; the choice between a zero-page and an absolute mode is made
// by the assembler from the operand value.
func (m AddressingMode) Size() (int, bool) {
	switch m {
	case ImpliedAddressing, AccumulatorAddressing:
		return 1, true
	case ImmediateAddressing, ZeroPageAddressing, ZeroPageXAddressing, ZeroPageYAddressing,
		RelativeAddressing, IndirectXAddressing, IndirectYAddressing:
		return 2, true
	case AbsoluteAddressing, AbsoluteXAddressing, AbsoluteYAddressing, IndirectAddressing:
		return 3, true
	default:
		return 0, false
	}
}

// NMIAddress, ResetAddress and IrqAddress are the fixed vector slots at the
// end of the PRG address space.
const (
	NMIAddress   uint16 = 0xFFFA
	ResetAddress uint16 = 0xFFFC
	IrqAddress   uint16 = 0xFFFE
)

// InterruptVectorStartAddress is the first byte of the 6-byte vector table.
const InterruptVectorStartAddress uint16 = NMIAddress

// MaxOpcodeSize is the largest possible encoded instruction length.
const MaxOpcodeSize = 3

// CodeBaseAddress is where PRG ROM is mapped into CPU address space for a
// single 32 KiB PRG bank.
const CodeBaseAddress uint16 = 0x8000
