package m6502

import (
	"fmt"

	retrom6502 "github.com/retroenv/retrogolib/arch/cpu/m6502"
)

// opcodeKey identifies one legal (mnemonic, addressing mode) combination.
type opcodeKey struct {
	mnemonic string
	mode     AddressingMode
}

// Opcodes maps every legal (mnemonic, addressing mode) pair to its encoded
// byte. This is the opcode table named in the assembler design: it is
// consulted identically by the pass-1 size estimator and the pass-2 emitter,
// which is what keeps their size computations in lockstep.
//
// It is built by inverting retrogolib's own 256-entry byte -> opcode table,
// the same authority the disassembly direction reads forward. Unofficial
// opcodes are skipped: ca65 syntax assembles only the official encoding for
// a given (mnemonic, mode) pair, and the unofficial opcodes otherwise alias
// official mnemonic names under modes an official byte already covers.
var Opcodes = func() map[opcodeKey]byte {
	m := make(map[opcodeKey]byte, 160)
	for b, op := range retrom6502.Opcodes {
		ins := op.Instruction
		if ins == nil || ins.Unofficial {
			continue
		}
		key := opcodeKey{mnemonic: ins.Name, mode: AddressingMode(op.Addressing)}
		if _, exists := m[key]; exists {
			continue
		}
		m[key] = byte(b)
	}
	return m
}()

// knownMnemonics is derived from Opcodes so mnemonic validity can be checked
// without scanning the whole table on every lookup.
var knownMnemonics = func() map[string]bool {
	m := make(map[string]bool, 64)
	for key := range Opcodes {
		m[key.mnemonic] = true
	}
	return m
}()

// IsMnemonic returns whether mnemonic is a known 6502 instruction name.
func IsMnemonic(mnemonic string) bool {
	return knownMnemonics[mnemonic]
}

// IsValid returns whether the given (mnemonic, addressing mode) combination
// has an assigned opcode byte.
func IsValid(mnemonic string, mode AddressingMode) bool {
	_, ok := Opcodes[opcodeKey{mnemonic, mode}]
	return ok
}

// OpcodeByte returns the encoded byte for a (mnemonic, addressing mode) pair.
func OpcodeByte(mnemonic string, mode AddressingMode) (byte, error) {
	b, ok := Opcodes[opcodeKey{mnemonic, mode}]
	if !ok {
		return 0, fmt.Errorf("no opcode for %s in addressing mode %d", mnemonic, mode)
	}
	return b, nil
}
