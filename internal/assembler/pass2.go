package assembler

import (
	"fmt"

	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/expr"
	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// deferredAssign is a `NAME = OTHER_LABEL` line whose right-hand side did
// not resolve during classification (§4.3 step 4), retained so pass 2 can
// attach NAME as an alias on the block holding OTHER_LABEL once every
// block has been emitted, per the label-aliasing design note.
type deferredAssign struct {
	name   string
	target string
	origin int
}

type emitter struct {
	file     string
	table    *symtab.Table
	registry *segment.Registry
	deferred []deferredAssign
}

func newEmitter(file string, tab *symtab.Table) *emitter {
	return &emitter{file: file, table: tab, registry: segment.NewRegistry()}
}

// run walks every segment's classified lines, in first-reference order, to
// produce the emitted block registry.
func (e *emitter) run(c *classifier) (*segment.Registry, error) {
	for _, name := range c.order {
		if reserveOnly(name) {
			continue // ZEROPAGE/BSS labels already became final-valued constants in pass 1.
		}
		var err error
		if codeBearing(name) {
			err = e.emitCode(name, c.lines[name])
		} else {
			err = e.emitData(name, c.lines[name])
		}
		if err != nil {
			return nil, err
		}
	}
	if err := e.resolveDeferred(); err != nil {
		return nil, err
	}
	return e.registry, nil
}

// emitCode implements §4.4's CODE-segment walk: instructions accumulate
// into a current block; a label either starts that block or is attached to
// the position of the next instruction; an inline data directive flushes
// the code block and starts a data block that inherits any label not yet
// attached to an instruction. Blocks are appended in source order.
func (e *emitter) emitCode(name segment.Name, lines []*line) error {
	seg := e.registry.Get(name)

	var block *segment.Block
	var data *segment.Block
	pendingLabel := ""
	havePending := false

	flushBlock := func() {
		if block != nil && len(block.Instructions) > 0 {
			seg.Append(block)
		}
		block = nil
	}
	flushData := func() {
		if data != nil && len(data.Data) > 0 {
			seg.Append(data)
		}
		data = nil
	}

	for _, ln := range lines {
		switch ln.Kind {
		case lineLabel:
			flushData()
			switch {
			case block == nil:
				block = &segment.Block{Label: ln.Label}
			case len(block.Instructions) == 0 && block.Label == "":
				block.Label = ln.Label
			default:
				pendingLabel = ln.Label
				havePending = true
			}

		case lineInstruction:
			flushData()
			if block == nil {
				block = &segment.Block{}
			}
			if havePending {
				if block.InstrLabels == nil {
					block.InstrLabels = make(map[int]string)
				}
				block.InstrLabels[len(block.Instructions)] = pendingLabel
				havePending = false
			}
			ins, err := e.buildInstruction(ln)
			if err != nil {
				return err
			}
			block.Instructions = append(block.Instructions, ins)

		case lineDirective:
			carried := ""
			if block != nil && len(block.Instructions) == 0 {
				carried = block.Label
			}
			flushBlock()
			if data == nil {
				data = &segment.Block{Label: carried}
				if havePending {
					if data.Label == "" {
						data.Label = pendingLabel
					} else {
						data.AddAlias(pendingLabel)
					}
					havePending = false
				}
			}
			if err := e.appendDirective(data, ln); err != nil {
				return err
			}

		case lineAssignment:
			e.deferred = append(e.deferred, deferredAssign{name: ln.AssignName, target: ln.AssignExpr, origin: ln.Origin})
		}
	}
	flushBlock()
	flushData()
	return nil
}

// emitData implements §4.4's non-CODE segment walk: bytes accumulate into
// the block keyed by the most recent label.
func (e *emitter) emitData(name segment.Name, lines []*line) error {
	seg := e.registry.Get(name)

	var block *segment.Block
	flush := func() {
		if block != nil && len(block.Data) > 0 {
			seg.Append(block)
		}
		block = nil
	}

	for _, ln := range lines {
		switch ln.Kind {
		case lineLabel:
			switch {
			case block == nil:
				block = &segment.Block{Label: ln.Label}
			case len(block.Data) == 0 && block.Label == "":
				block.Label = ln.Label
			default:
				flush()
				block = &segment.Block{Label: ln.Label}
			}

		case lineDirective:
			if block == nil {
				block = &segment.Block{}
			}
			if err := e.appendDirective(block, ln); err != nil {
				return err
			}

		case lineAssignment:
			e.deferred = append(e.deferred, deferredAssign{name: ln.AssignName, target: ln.AssignExpr, origin: ln.Origin})

		case lineInstruction:
			return asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin,
				fmt.Errorf("instruction %s is not valid outside a code segment", ln.Mnemonic))
		}
	}
	flush()
	return nil
}

// appendDirective emits a `.byte`/`.word`/`.addr`/`.res` directive's bytes
// into block, recording a relocation wherever a value can't be folded yet.
func (e *emitter) appendDirective(block *segment.Block, ln *line) error {
	switch ln.Directive {
	case dirByte:
		return e.appendByte(block, ln)
	case dirWord, dirAddr:
		return e.appendWord(block, ln)
	case dirRes:
		n, fill, err := parseResArgs(e.file, e.table, ln)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			block.Data = append(block.Data, fill)
		}
		return nil
	default:
		return nil
	}
}

func (e *emitter) appendByte(block *segment.Block, ln *line) error {
	for _, field := range splitArgs(ln.Args) {
		if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
			for i := 1; i < len(field)-1; i++ {
				block.Data = append(block.Data, field[i])
			}
			continue
		}

		selector, rest := detectByteSelector(field)
		v, ok, err := expr.TryEval(field, foldLookup(e.table))
		if err != nil {
			return asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
		}
		if ok {
			block.Data = append(block.Data, byte(v))
			continue
		}
		if selector == 0 || !isIdentifier(rest) {
			return asmerr.AtLine(asmerr.UnresolvedSymbol, e.file, ln.Origin, errUnresolvedByte(field))
		}
		size := segment.RelocByteLo
		if selector == 'H' {
			size = segment.RelocByteHi
		}
		block.Relocations = append(block.Relocations, segment.Relocation{Offset: len(block.Data), Symbol: rest, Size: size})
		block.Data = append(block.Data, 0)
	}
	return nil
}

func (e *emitter) appendWord(block *segment.Block, ln *line) error {
	for _, field := range splitArgs(ln.Args) {
		v, ok, err := expr.TryEval(field, foldLookup(e.table))
		if err != nil {
			return asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
		}
		off := len(block.Data)
		if ok {
			block.Data = append(block.Data, byte(v), byte(v>>8))
			continue
		}
		if !isIdentifier(field) {
			return asmerr.AtLine(asmerr.UnresolvedSymbol, e.file, ln.Origin, errUnresolvedWord(field))
		}
		block.Relocations = append(block.Relocations, segment.Relocation{Offset: off, Symbol: field, Size: segment.RelocWord})
		block.Data = append(block.Data, 0, 0)
	}
	return nil
}

// buildInstruction runs the full addressing-mode parser and emission
// decision described in §4.4.
func (e *emitter) buildInstruction(ln *line) (segment.Instruction, error) {
	if m6502.BranchMnemonics[ln.Mnemonic] {
		return e.buildBranch(ln)
	}

	shape, inner, err := parseOperandSyntax(ln.Operand)
	if err != nil {
		return segment.Instruction{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
	}

	switch shape {
	case shapeNone:
		return e.fixedOperand(ln, m6502.ImpliedAddressing, segment.Operand{})
	case shapeAccumulator:
		return e.fixedOperand(ln, m6502.AccumulatorAddressing, segment.Operand{})
	case shapeImmediate:
		return e.buildImmediate(ln, inner)
	case shapeIndexedIndirectX:
		return e.buildSymbolicOperand(ln, m6502.IndirectXAddressing, inner)
	case shapeIndirectIndexedY:
		return e.buildSymbolicOperand(ln, m6502.IndirectYAddressing, inner)
	case shapeIndirect:
		return e.buildSymbolicOperand(ln, m6502.IndirectAddressing, inner)
	case shapeForceZeroPage:
		return e.buildForced(ln, m6502.ZeroPageAddressing, inner)
	case shapeForceZeroPageX:
		return e.buildForced(ln, m6502.ZeroPageXAddressing, inner)
	case shapeForceZeroPageY:
		return e.buildForced(ln, m6502.ZeroPageYAddressing, inner)
	case shapePlain, shapeIndexedX, shapeIndexedY:
		return e.buildDirectOperand(ln, shape, inner)
	default:
		return segment.Instruction{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, fmt.Errorf("unsupported operand %q", ln.Operand))
	}
}

func (e *emitter) fixedOperand(ln *line, mode m6502.AddressingMode, operand segment.Operand) (segment.Instruction, error) {
	op, err := m6502.OpcodeByte(ln.Mnemonic, mode)
	if err != nil {
		return segment.Instruction{}, asmerr.AtLine(asmerr.InvalidMode, e.file, ln.Origin, err)
	}
	return segment.Instruction{Mnemonic: ln.Mnemonic, Mode: mode, Operand: operand, Opcode: op}, nil
}

func (e *emitter) buildImmediate(ln *line, inner string) (segment.Instruction, error) {
	v, ok, err := expr.TryEval(inner, foldLookup(e.table))
	if err != nil {
		return segment.Instruction{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
	}
	if ok {
		return e.fixedOperand(ln, m6502.ImmediateAddressing, segment.Operand{Kind: segment.OperandImmediateByte, Value: v & 0xFF})
	}

	selector, rest := detectByteSelector(inner)
	if selector == 0 || !isIdentifier(rest) {
		return segment.Instruction{}, asmerr.AtLine(asmerr.UnresolvedSymbol, e.file, ln.Origin,
			fmt.Errorf("immediate operand %q needs #<label or #>label for a deferred symbol", inner))
	}
	kind := segment.OperandImmediateLow
	if selector == 'H' {
		kind = segment.OperandImmediateHigh
	}
	return e.fixedOperand(ln, m6502.ImmediateAddressing, segment.Operand{Kind: kind, Symbol: rest})
}

// buildSymbolicOperand handles addressing modes with no zero-page/absolute
// ambiguity: indexed indirect, indirect indexed, and bare indirect.
func (e *emitter) buildSymbolicOperand(ln *line, mode m6502.AddressingMode, inner string) (segment.Instruction, error) {
	operand, err := e.resolveOperand(ln, inner)
	if err != nil {
		return segment.Instruction{}, err
	}
	return e.fixedOperand(ln, mode, operand)
}

// buildForced handles an explicit `<` force-zero-page prefix, which
// overrides the usual value-driven zero-page/absolute choice.
func (e *emitter) buildForced(ln *line, mode m6502.AddressingMode, inner string) (segment.Instruction, error) {
	operand, err := e.resolveOperand(ln, inner)
	if err != nil {
		return segment.Instruction{}, err
	}
	op, err := m6502.OpcodeByte(ln.Mnemonic, mode)
	if err != nil {
		return segment.Instruction{}, asmerr.AtLine(asmerr.InvalidMode, e.file, ln.Origin, err)
	}
	return segment.Instruction{Mnemonic: ln.Mnemonic, Mode: mode, Operand: operand, Opcode: op, ForceZero: true}, nil
}

// buildDirectOperand handles the shapes where the zero-page/absolute choice
// depends on the resolved operand value: plain, and X/Y indexed.
func (e *emitter) buildDirectOperand(ln *line, shape operandShape, inner string) (segment.Instruction, error) {
	v, ok, err := expr.TryEval(inner, foldLookup(e.table))
	if err != nil {
		return segment.Instruction{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
	}
	if ok && v >= 0 && v <= 0xFF && m6502.IsValid(ln.Mnemonic, zeroPageMode(shape)) {
		return e.fixedOperand(ln, zeroPageMode(shape), segment.Operand{Kind: segment.OperandValue, Value: v})
	}

	mode := absoluteMode(shape)
	if ok {
		return e.fixedOperand(ln, mode, segment.Operand{Kind: segment.OperandValue, Value: v})
	}
	if !isIdentifier(inner) {
		return segment.Instruction{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin,
			fmt.Errorf("unresolved operand %q is not a plain label reference", inner))
	}
	return e.fixedOperand(ln, mode, segment.Operand{Kind: segment.OperandLabel, Symbol: inner})
}

func (e *emitter) buildBranch(ln *line) (segment.Instruction, error) {
	operand, err := e.resolveOperand(ln, ln.Operand)
	if err != nil {
		return segment.Instruction{}, err
	}
	return e.fixedOperand(ln, m6502.RelativeAddressing, operand)
}

// resolveOperand evaluates inner, folding to a literal value when possible
// and otherwise requiring a plain identifier the linker will resolve.
func (e *emitter) resolveOperand(ln *line, inner string) (segment.Operand, error) {
	v, ok, err := expr.TryEval(inner, foldLookup(e.table))
	if err != nil {
		return segment.Operand{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin, err)
	}
	if ok {
		return segment.Operand{Kind: segment.OperandValue, Value: v}, nil
	}
	if !isIdentifier(inner) {
		return segment.Operand{}, asmerr.AtLine(asmerr.Syntax, e.file, ln.Origin,
			fmt.Errorf("unresolved operand %q is not a plain label reference", inner))
	}
	return segment.Operand{Kind: segment.OperandLabel, Symbol: inner}, nil
}

// resolveDeferred attaches every deferred `NAME = OTHER_LABEL` assignment
// as an alias on the block declaring OTHER_LABEL, and pre-declares NAME so
// the linker can resolve it the same way it resolves any other alias.
func (e *emitter) resolveDeferred() error {
	for _, d := range e.deferred {
		block := e.findLabelBlock(d.target)
		if block == nil {
			return asmerr.AtLine(asmerr.UnresolvedSymbol, e.file, d.origin,
				fmt.Errorf("assignment target %q is not a known label", d.target))
		}
		block.AddAlias(d.name)
		if err := e.table.Declare(d.name, symtab.KindLabel, 0); err != nil {
			return asmerr.AtLine(asmerr.DuplicateSymbol, e.file, d.origin, err)
		}
	}
	return nil
}

func (e *emitter) findLabelBlock(name string) *segment.Block {
	for _, segName := range e.registry.Order() {
		seg := e.registry.Get(segName)
		for _, block := range seg.Blocks {
			if block.Label == name {
				return block
			}
			for _, alias := range block.Aliases {
				if alias == name {
					return block
				}
			}
		}
	}
	return nil
}
