package assembler

import (
	"fmt"
	"strings"

	"github.com/retroenv/nesasmgo/internal/expr"
	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// operandShape is the syntactic shape of an operand, independent of whether
// the enclosed expression resolves to a zero-page or absolute value.
type operandShape uint8

const (
	shapeNone operandShape = iota
	shapeAccumulator
	shapeImmediate
	shapeIndexedIndirectX // (expr,X)
	shapeIndirectIndexedY // (expr),Y
	shapeIndirect         // (expr)
	shapeIndexedX         // expr,X
	shapeIndexedY         // expr,Y
	shapePlain            // expr
	shapeForceZeroPage    // <expr
	shapeForceZeroPageX   // <expr,X
	shapeForceZeroPageY   // <expr,Y
)

// parseOperandSyntax classifies operand (already trimmed of whitespace) into
// one of the accepted addressing-mode operand syntaxes from the directive
// table, per §6.
func parseOperandSyntax(operand string) (shape operandShape, inner string, err error) {
	if operand == "" {
		return shapeNone, "", nil
	}
	if strings.EqualFold(operand, "A") {
		return shapeAccumulator, "", nil
	}
	if strings.HasPrefix(operand, "#") {
		return shapeImmediate, strings.TrimSpace(operand[1:]), nil
	}
	if strings.HasPrefix(operand, "(") {
		return parseIndirectOperand(operand)
	}

	forced := false
	rest := operand
	if strings.HasPrefix(rest, "<") {
		forced = true
		rest = strings.TrimSpace(rest[1:])
	}

	if idx := topLevelComma(rest); idx >= 0 {
		index := strings.TrimSpace(rest[idx+1:])
		base := strings.TrimSpace(rest[:idx])
		switch strings.ToUpper(index) {
		case "X":
			if forced {
				return shapeForceZeroPageX, base, nil
			}
			return shapeIndexedX, base, nil
		case "Y":
			if forced {
				return shapeForceZeroPageY, base, nil
			}
			return shapeIndexedY, base, nil
		default:
			return 0, "", fmt.Errorf("invalid index register %q", index)
		}
	}
	if forced {
		return shapeForceZeroPage, rest, nil
	}
	return shapePlain, rest, nil
}

func parseIndirectOperand(operand string) (operandShape, string, error) {
	closeIdx := strings.LastIndexByte(operand, ')')
	if closeIdx < 0 {
		return 0, "", fmt.Errorf("unterminated indirect operand %q", operand)
	}
	inner := strings.TrimSpace(operand[1:closeIdx])
	suffix := strings.TrimSpace(operand[closeIdx+1:])

	if suffix == "" {
		if idx := topLevelComma(inner); idx >= 0 {
			index := strings.TrimSpace(inner[idx+1:])
			if !strings.EqualFold(index, "X") {
				return 0, "", fmt.Errorf("invalid indexed-indirect operand %q", operand)
			}
			return shapeIndexedIndirectX, strings.TrimSpace(inner[:idx]), nil
		}
		return shapeIndirect, inner, nil
	}
	if strings.HasPrefix(suffix, ",") && strings.EqualFold(strings.TrimSpace(suffix[1:]), "Y") {
		return shapeIndirectIndexedY, inner, nil
	}
	return 0, "", fmt.Errorf("invalid indirect operand %q", operand)
}

// topLevelComma returns the index of a comma in text, or -1 if none. Text
// passed in here never itself contains parentheses (those are peeled off by
// the caller first), so no depth tracking is needed.
func topLevelComma(text string) int {
	return strings.IndexByte(text, ',')
}

// foldLookup resolves only symbols whose value is known in full at pass-1
// time: constants and defines. Label values are segment-local offsets, not
// final addresses, so they must never feed a zero-page-vs-absolute or
// immediate-fold decision ahead of linking.
func foldLookup(tab *symtab.Table) expr.Lookup {
	return func(name string) (int32, bool) {
		sym, ok := tab.Get(name)
		if !ok || !sym.Resolved {
			return 0, false
		}
		if sym.Kind != symtab.KindConstant && sym.Kind != symtab.KindDefine {
			return 0, false
		}
		return sym.Value, true
	}
}

// zeroPageMode returns the zero-page addressing mode matching shape, for
// shapes where a zero-page/absolute choice applies.
func zeroPageMode(shape operandShape) m6502.AddressingMode {
	switch shape {
	case shapeIndexedX, shapeForceZeroPageX:
		return m6502.ZeroPageXAddressing
	case shapeIndexedY, shapeForceZeroPageY:
		return m6502.ZeroPageYAddressing
	default:
		return m6502.ZeroPageAddressing
	}
}

func absoluteMode(shape operandShape) m6502.AddressingMode {
	switch shape {
	case shapeIndexedX:
		return m6502.AbsoluteXAddressing
	case shapeIndexedY:
		return m6502.AbsoluteYAddressing
	default:
		return m6502.AbsoluteAddressing
	}
}

// detectByteSelector strips a leading `<` (low byte) or `>` (high byte)
// selector used to request one byte of an otherwise-unresolved symbol's
// eventual address, returning which one (if any) along with the remainder.
// A lone `>` not immediately followed by another `>` is the selector, to
// stay consistent with the expression grammar's unary vs shift handling.
func detectByteSelector(inner string) (selector byte, rest string) {
	if strings.HasPrefix(inner, "<") {
		return 'L', strings.TrimSpace(inner[1:])
	}
	if strings.HasPrefix(inner, ">") && !strings.HasPrefix(inner, ">>") {
		return 'H', strings.TrimSpace(inner[1:])
	}
	return 0, inner
}

// estimateSize implements the pass-1 instruction size estimate from §4.3.
// fold is the result of evaluating inner through foldLookup: only
// constants/defines resolve, so the size choice made here is guaranteed
// stable when pass 2 re-evaluates the same operand with full label and
// import information available.
func estimateSize(mnemonic string, shape operandShape, fold func() (int32, bool, error)) (int, error) {
	if m6502.BranchMnemonics[mnemonic] {
		return 2, nil
	}
	switch shape {
	case shapeNone, shapeAccumulator:
		return 1, nil
	case shapeImmediate, shapeIndexedIndirectX, shapeIndirectIndexedY,
		shapeForceZeroPage, shapeForceZeroPageX, shapeForceZeroPageY:
		return 2, nil
	case shapeIndirect:
		return 3, nil
	case shapePlain, shapeIndexedX, shapeIndexedY:
		v, ok, err := fold()
		if err != nil {
			return 0, err
		}
		if ok && v >= 0 && v <= 0xFF && m6502.IsValid(mnemonic, zeroPageMode(shape)) {
			return 2, nil
		}
		return 3, nil
	default:
		return 0, fmt.Errorf("unknown operand shape for %s", mnemonic)
	}
}
