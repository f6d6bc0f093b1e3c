package m6502

import (
	retrom6502 "github.com/retroenv/retrogolib/arch/cpu/m6502"
)

// Instruction describes a 6502 mnemonic independent of addressing mode.
type Instruction struct {
	Name string
}

// BranchMnemonics is the set of conditional branch instructions, all of
// which use relative addressing and are always 2 bytes. Derived from
// retrogolib's own branching instruction set rather than retyped here.
var BranchMnemonics = func() map[string]bool {
	m := make(map[string]bool, len(retrom6502.BranchingInstructions))
	for name := range retrom6502.BranchingInstructions {
		m[name] = true
	}
	return m
}()

// CallMnemonic is the subroutine call instruction, used by the runtime-call
// codegen adapter to emit JSR sequences against imported symbols.
var CallMnemonic = retrom6502.Jsr.Name

// ReturnMnemonic marks the end of a subroutine.
var ReturnMnemonic = retrom6502.Rts.Name
