package assembler

import (
	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/expr"
	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// reserveOnlySegments never occupy ROM: their labels resolve to a final
// address the moment they're declared, so they are registered as constants
// rather than as labels awaiting linker placement. ZEROPAGE is named by
// spec.md §4.3; BSS is this assembler's one addition to the segment set.
func reserveOnly(name segment.Name) bool {
	return name == segment.ZEROPAGE || name == segment.BSS
}

// codeBearing segments hold instructions; §4.4 describes CODE explicitly,
// and the linker's fixed layout (§4.5) places STARTUP alongside it, so both
// get the code-segment block-splitting treatment in pass 2.
func codeBearing(name segment.Name) bool {
	return name == segment.CODE || name == segment.STARTUP
}

// zeroPageBase and bssBase anchor the reserve-only segments' running cursor
// to a concrete address. ZEROPAGE is the 6502's zero page proper; BSS is
// placed just past the stack and OAM shadow page, a conventional spot for
// general NES RAM variables.
const (
	zeroPageBase uint16 = 0x0000
	bssBase      uint16 = 0x0300
)

func reserveBase(name segment.Name) uint16 {
	if name == segment.ZEROPAGE {
		return zeroPageBase
	}
	return bssBase
}

// computeOffsets implements the rest of pass 1: walking each segment's
// classified lines to assign every label a value (a segment-local byte
// offset for ROM-placed segments, a final address for reserve-only ones)
// and every instruction its estimated size.
func (c *classifier) computeOffsets() error {
	for _, name := range c.order {
		if err := c.computeSegmentOffsets(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *classifier) computeSegmentOffsets(name segment.Name) error {
	cursor := 0
	if reserveOnly(name) {
		cursor = int(reserveBase(name))
	}

	for _, ln := range c.lines[name] {
		switch ln.Kind {
		case lineLabel:
			if err := c.declareLabel(name, ln, cursor); err != nil {
				return err
			}

		case lineDirective:
			size, err := c.directiveSize(name, ln)
			if err != nil {
				return err
			}
			ln.Offset = cursor
			ln.Size = size
			cursor += size

		case lineInstruction:
			size, err := c.instructionSize(ln)
			if err != nil {
				return err
			}
			ln.Offset = cursor
			ln.Size = size
			cursor += size

		case lineAssignment:
			// Deferred to pass 2; does not occupy space.
		}
	}
	return nil
}

func (c *classifier) declareLabel(name segment.Name, ln *line, cursor int) error {
	kind := symtab.KindLabel
	if reserveOnly(name) {
		kind = symtab.KindConstant
	}
	ln.Offset = cursor
	if err := c.table.Declare(ln.Label, kind, int32(cursor)); err != nil {
		return asmerr.AtLine(asmerr.DuplicateSymbol, c.file, ln.Origin, err)
	}
	return nil
}

func (c *classifier) instructionSize(ln *line) (int, error) {
	if !m6502.IsMnemonic(ln.Mnemonic) {
		return 0, asmerr.AtLine(asmerr.UnknownMnemonic, c.file, ln.Origin, errUnknownMnemonic(ln.Mnemonic))
	}
	shape, inner, err := parseOperandSyntax(ln.Operand)
	if err != nil {
		return 0, asmerr.AtLine(asmerr.Syntax, c.file, ln.Origin, err)
	}
	fold := func() (int32, bool, error) {
		return expr.TryEval(inner, foldLookup(c.table))
	}
	size, err := estimateSize(ln.Mnemonic, shape, fold)
	if err != nil {
		return 0, asmerr.AtLine(asmerr.InvalidMode, c.file, ln.Origin, err)
	}
	return size, nil
}

func (c *classifier) directiveSize(segName segment.Name, ln *line) (int, error) {
	switch ln.Directive {
	case dirByte:
		return byteArgsSize(ln.Args), nil

	case dirWord, dirAddr:
		return 2 * len(splitArgs(ln.Args)), nil

	case dirRes:
		n, _, err := parseResArgs(c.file, c.table, ln)
		if err != nil {
			return 0, err
		}
		if codeBearing(segName) {
			return 0, asmerr.AtLine(asmerr.Syntax, c.file, ln.Origin, errResInCode())
		}
		return n, nil

	default:
		return 0, nil
	}
}

// parseResArgs evaluates a `.res N [, fill]` directive's arguments. It is
// shared between the pass-1 offset walk and pass-2 emission so both agree
// on N and fill without re-deriving the parsing rules twice.
func parseResArgs(file string, tab *symtab.Table, ln *line) (n int, fill byte, err error) {
	fields := splitArgs(ln.Args)
	if len(fields) == 0 {
		return 0, 0, asmerr.AtLine(asmerr.Syntax, file, ln.Origin, errEmptyRes())
	}
	nv, ok, err := expr.TryEval(fields[0], foldLookup(tab))
	if err != nil {
		return 0, 0, asmerr.AtLine(asmerr.Syntax, file, ln.Origin, err)
	}
	if !ok {
		return 0, 0, asmerr.AtLine(asmerr.UnresolvedSymbol, file, ln.Origin, errUnresolvedRes())
	}
	fillValue := byte(0)
	if len(fields) > 1 {
		fv, ok, err := expr.TryEval(fields[1], foldLookup(tab))
		if err != nil {
			return 0, 0, asmerr.AtLine(asmerr.Syntax, file, ln.Origin, err)
		}
		if !ok {
			return 0, 0, asmerr.AtLine(asmerr.UnresolvedSymbol, file, ln.Origin, errUnresolvedRes())
		}
		fillValue = byte(fv)
	}
	return int(nv), fillValue, nil
}

// byteArgsSize counts the bytes a `.byte` directive's argument list emits:
// one byte per numeric value, one byte per character in a quoted string.
func byteArgsSize(args string) int {
	total := 0
	for _, field := range splitArgs(args) {
		if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
			total += len(field) - 2
			continue
		}
		total++
	}
	return total
}
