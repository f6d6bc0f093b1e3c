package segment

import "github.com/retroenv/nesasmgo/internal/m6502"

// OperandKind identifies the shape of an instruction's operand, independent
// of addressing mode (several addressing modes share an operand shape, e.g.
// absolute and zero page both carry a plain numeric/label operand).
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandImmediateByte
	OperandImmediateLow  // #<symbol
	OperandImmediateHigh // #>symbol
	OperandValue         // a resolved numeric operand (byte or word, per Mode)
	OperandLabel         // an operand that refers to a symbol by name
)

// Operand carries exactly the fields needed for OperandKind.
type Operand struct {
	Kind   OperandKind
	Value  int32  // for OperandImmediateByte, OperandValue
	Symbol string // for OperandImmediateLow/High, OperandLabel
}

// Instruction is one emitted 6502 instruction: a mnemonic, an addressing
// mode, and an operand variant.
type Instruction struct {
	Mnemonic  string
	Mode      m6502.AddressingMode
	Operand   Operand
	Opcode    byte
	ForceZero bool // force-zero-page operand prefix (`<`) was used in source
}

// Size returns the emitted byte length of the instruction, determined
// strictly by addressing mode as required by the fixed (mnemonic, mode)
// size table.
func (ins Instruction) Size() int {
	size, ok := ins.Mode.Size()
	if !ok {
		return 0
	}
	return size
}
