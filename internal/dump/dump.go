// Package dump renders a linked segment registry back out as an annotated
// ca65-style listing, for the optional -dump-asm debug flag. It is a
// read-only diagnostic: it never feeds back into the ROM build. Grounded in
// the teacher's internal/ca65.FileWriter, which walks a resolved program
// segment by segment printing ".segment \"%s\"" headers, label lines and
// hex-byte comments (internal/ca65/file.go's writeSegment/writeLabel).
//
// Operand text is rendered through retrogolib/arch/nes/parameter, the same
// converter the teacher's assembler/ca65.FileWriter uses (assembler/ca65's
// ParamConfig), so a branch to a label reads "reset" and an indexed load
// reads "$1234,X" rather than a bare mnemonic.
package dump

import (
	"fmt"
	"strings"

	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/segment"
	retrom6502 "github.com/retroenv/retrogolib/arch/cpu/m6502"
	"github.com/retroenv/retrogolib/arch/nes/parameter"
)

// paramConfig is the teacher's assembler/ca65.ParamConfig: the "z:"/"a:"
// prefixes force ca65's own assembler to pick the same zero-page/absolute
// mode this listing already resolved, and indirect operands get the "()"
// wrapping ca65 syntax requires.
var paramConfig = parameter.Config{
	ZeroPagePrefix: "z:",
	AbsolutePrefix: "a:",
	IndirectPrefix: "(",
	IndirectSuffix: ")",
}

var paramConverter = parameter.New(paramConfig)

// segmentHeader matches the teacher's `.segment "%s"\n\n` line, the one
// piece of ca65.FileWriter output format worth reusing verbatim: any ca65
// toolchain a reader pipes this listing through recognizes it unchanged.
const segmentHeader = ".segment \"%s\"\n\n"

// Listing renders every segment in registry, in source order, as a ca65
// listing annotated with each block's resolved address and raw bytes.
func Listing(registry *segment.Registry) string {
	var b strings.Builder
	for _, name := range registry.Order() {
		fmt.Fprintf(&b, segmentHeader, name)
		for _, block := range registry.Get(name).Blocks {
			writeBlock(&b, block)
		}
	}
	return b.String()
}

func writeBlock(b *strings.Builder, block *segment.Block) {
	if block.Label != "" {
		fmt.Fprintf(b, "%-24s ; $%04X\n", block.Label+":", block.Address)
	}
	for _, alias := range block.Aliases {
		fmt.Fprintf(b, "%-24s ; alias for $%04X\n", alias+":", block.Address)
	}

	if block.IsCode() {
		writeCode(b, block)
		return
	}
	writeData(b, block.Data)
}

func writeCode(b *strings.Builder, block *segment.Block) {
	offset := 0
	for i, ins := range block.Instructions {
		if label, ok := block.InstrLabels[i]; ok {
			fmt.Fprintf(b, "%-24s ; $%04X\n", label+":", int(block.Address)+offset)
		}
		operand, err := operandText(ins)
		if err != nil {
			operand = ""
		}
		text := ins.Mnemonic
		if operand != "" {
			text = ins.Mnemonic + " " + operand
		}
		fmt.Fprintf(b, "  %-16s ; $%04X opcode $%02X\n", text, int(block.Address)+offset, ins.Opcode)
		offset += ins.Size()
	}
}

// operandText renders ins's operand the way ca65 syntax expects it,
// delegating the actual formatting to retrogolib's parameter converter. A
// symbolic operand (branch target, label reference) is passed through as
// its bare name, matching how the teacher's ProcessVariableUsage hands a
// string reference straight to parameter.String; a resolved numeric operand
// is wrapped in the addressing mode's retrogolib parameter type first.
func operandText(ins segment.Instruction) (string, error) {
	mode := ins.Mode.Retrogolib()
	switch ins.Operand.Kind {
	case segment.OperandNone:
		if ins.Mode == m6502.AccumulatorAddressing {
			return parameter.String(paramConverter, mode, retrom6502.Accumulator(0))
		}
		return "", nil
	case segment.OperandImmediateByte:
		return parameter.String(paramConverter, mode, int(ins.Operand.Value))
	case segment.OperandImmediateLow:
		return "#<" + ins.Operand.Symbol, nil
	case segment.OperandImmediateHigh:
		return "#>" + ins.Operand.Symbol, nil
	case segment.OperandLabel:
		return parameter.String(paramConverter, mode, ins.Operand.Symbol)
	case segment.OperandValue:
		param, err := numericParam(ins.Mode, ins.Operand.Value)
		if err != nil {
			return "", err
		}
		return parameter.String(paramConverter, mode, param)
	default:
		return "", nil
	}
}

// numericParam wraps a resolved operand value in the retrogolib parameter
// type matching mode, the same typed values the teacher's opcode parameter
// readers produce for each addressing mode (internal/arch/m6502/params.go).
func numericParam(mode m6502.AddressingMode, value int32) (any, error) {
	switch mode {
	case m6502.AbsoluteAddressing, m6502.RelativeAddressing:
		return retrom6502.Absolute(uint16(value)), nil
	case m6502.AbsoluteXAddressing:
		return retrom6502.AbsoluteX(uint16(value)), nil
	case m6502.AbsoluteYAddressing:
		return retrom6502.AbsoluteY(uint16(value)), nil
	case m6502.ZeroPageAddressing:
		return retrom6502.ZeroPage(uint16(value)), nil
	case m6502.ZeroPageXAddressing:
		return retrom6502.ZeroPageX(uint16(value)), nil
	case m6502.ZeroPageYAddressing:
		return retrom6502.ZeroPageY(uint16(value)), nil
	case m6502.IndirectAddressing:
		return retrom6502.Indirect(uint16(value)), nil
	case m6502.IndirectXAddressing:
		return retrom6502.IndirectX(uint16(value)), nil
	case m6502.IndirectYAddressing:
		return retrom6502.IndirectY(uint16(value)), nil
	default:
		return nil, fmt.Errorf("no operand rendering for addressing mode %d", mode)
	}
}

func writeData(b *strings.Builder, data []byte) {
	for i := 0; i < len(data); i += 8 {
		end := i + 8
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprint(b, "  .byte ")
		for j, v := range data[i:end] {
			if j > 0 {
				fmt.Fprint(b, ", ")
			}
			fmt.Fprintf(b, "$%02X", v)
		}
		fmt.Fprintln(b)
	}
}
