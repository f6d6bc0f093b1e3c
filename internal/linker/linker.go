// Package linker implements the core's linker/ROM builder (spec.md §4.5):
// it lays out assembled blocks at absolute addresses, fixes up every
// relocation and branch displacement, and writes the final iNES ROM.
//
// Grounded on the teacher's internal/ca65/file.go and
// internal/assembler/ca65/file.go, which walk an ordered PRG byte array
// segment by segment to produce a ca65 listing; this linker performs the
// inverse operation, walking ordered blocks to produce the binary PRG/CHR
// content those listings describe.
package linker

import (
	"fmt"

	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/ines"
	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

const (
	codeBase    = m6502.CodeBaseAddress
	vectorsBase = m6502.InterruptVectorStartAddress
	vectorsSize = 6
)

// romOrder is the fixed PRG placement order for ROM-mapped segments, per
// spec.md §4.5: "STARTUP and CODE fill PRG from $8000, RODATA follows."
// ZEROPAGE/BSS never appear here: their labels were already resolved to
// final RAM addresses in assembler pass 1. HEADER and CHARS are laid out
// separately, since neither occupies CPU address space.
var romOrder = []segment.Name{segment.STARTUP, segment.CODE, segment.RODATA}

// Config carries the linker's externally supplied inputs beyond the
// assembled blocks: the runtime-library method-address manifest and the
// cartridge mirroring flag (spec.md §4.5/§4.6, "supplied by the external
// collaborator").
type Config struct {
	RuntimeAddresses  map[string]uint16
	VerticalMirroring bool
}

// Link lays out every block, resolves every symbol and relocation, and
// returns the finished iNES ROM image.
func Link(registry *segment.Registry, symbols *symtab.Table, cfg Config) ([]byte, error) {
	l := &linker{registry: registry, symbols: symbols, cfg: cfg}
	return l.link()
}

type linker struct {
	registry *segment.Registry
	symbols  *symtab.Table
	cfg      Config
}

func linkErr(kind asmerr.Kind, err error) error {
	return asmerr.AtMethod(kind, "linker", 0, err)
}

func (l *linker) link() ([]byte, error) {
	if err := l.resolveImports(); err != nil {
		return nil, err
	}
	if err := l.placeROM(); err != nil {
		return nil, err
	}
	if err := l.declareLabels(); err != nil {
		return nil, err
	}

	prg, err := l.buildPRG()
	if err != nil {
		return nil, err
	}
	chr, err := l.buildCHR()
	if err != nil {
		return nil, err
	}
	header, err := l.buildHeader()
	if err != nil {
		return nil, err
	}

	rom, err := ines.Build(header, prg, chr)
	if err != nil {
		return nil, linkErr(asmerr.LayoutInconsistency, err)
	}
	return rom, nil
}

// resolveImports supplies every `.import`ed runtime-library method name
// its absolute PRG entry address from cfg.RuntimeAddresses.
func (l *linker) resolveImports() error {
	for _, sym := range l.symbols.Unresolved() {
		addr, ok := l.cfg.RuntimeAddresses[sym.Name]
		if !ok {
			return linkErr(asmerr.UnresolvedSymbol, fmt.Errorf("runtime method %q has no registered address", sym.Name))
		}
		if err := l.symbols.Resolve(sym.Name, int32(addr)); err != nil {
			return linkErr(asmerr.UnresolvedSymbol, err)
		}
	}
	return nil
}

// placeROM assigns every STARTUP/CODE/RODATA block its absolute PRG
// address in source order, then VECTORS its fixed final 6 bytes.
func (l *linker) placeROM() error {
	cur := int(codeBase)
	for _, name := range romOrder {
		if !l.registry.Has(name) {
			continue
		}
		for _, block := range l.registry.Get(name).Blocks {
			block.Address = uint16(cur)
			cur += block.Len()
			if cur > int(vectorsBase) {
				return linkErr(asmerr.ROMOverflow, fmt.Errorf("PRG content overflows into the vector table at $%04X", cur))
			}
		}
	}

	if !l.registry.Has(segment.VECTORS) {
		return nil
	}
	vcur := int(vectorsBase)
	for _, block := range l.registry.Get(segment.VECTORS).Blocks {
		block.Address = uint16(vcur)
		vcur += block.Len()
	}
	if vcur != int(vectorsBase)+vectorsSize {
		return linkErr(asmerr.LayoutInconsistency,
			fmt.Errorf("VECTORS segment is %d bytes, want %d", vcur-int(vectorsBase), vectorsSize))
	}
	return nil
}

// declareLabels overwrites every ROM-segment label's pass-1 segment-local
// placeholder value with its final absolute address, now that every
// block's base address is known.
func (l *linker) declareLabels() error {
	names := append(append([]segment.Name{}, romOrder...), segment.VECTORS)
	for _, name := range names {
		if !l.registry.Has(name) {
			continue
		}
		for _, block := range l.registry.Get(name).Blocks {
			if err := l.declareBlockLabels(block); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *linker) declareBlockLabels(block *segment.Block) error {
	if block.Label != "" {
		if err := l.symbols.Resolve(block.Label, int32(block.Address)); err != nil {
			return linkErr(asmerr.UnresolvedSymbol, err)
		}
	}
	for _, alias := range block.Aliases {
		if err := l.symbols.Resolve(alias, int32(block.Address)); err != nil {
			return linkErr(asmerr.UnresolvedSymbol, err)
		}
	}
	if !block.IsCode() || len(block.InstrLabels) == 0 {
		return nil
	}

	offset := 0
	for i, ins := range block.Instructions {
		if label, ok := block.InstrLabels[i]; ok {
			if err := l.symbols.Resolve(label, int32(block.Address)+int32(offset)); err != nil {
				return linkErr(asmerr.UnresolvedSymbol, err)
			}
		}
		offset += ins.Size()
	}
	return nil
}

// buildPRG emits the fixed 32 KiB PRG ROM, $FF-padded, with every placed
// block's resolved bytes copied to its assigned offset.
func (l *linker) buildPRG() ([]byte, error) {
	prg := make([]byte, ines.PRGSize)
	for i := range prg {
		prg[i] = 0xFF
	}

	names := append(append([]segment.Name{}, romOrder...), segment.VECTORS)
	for _, name := range names {
		if !l.registry.Has(name) {
			continue
		}
		for _, block := range l.registry.Get(name).Blocks {
			bytes, err := l.resolveBlock(block)
			if err != nil {
				return nil, err
			}
			offset := int(block.Address) - int(codeBase)
			copy(prg[offset:], bytes)
		}
	}
	return prg, nil
}

// buildCHR emits the fixed 8 KiB CHR ROM, $00-padded, from the CHARS
// segment's blocks laid out back to back starting at offset 0.
func (l *linker) buildCHR() ([]byte, error) {
	chr := make([]byte, ines.CHRSize)
	if !l.registry.Has(segment.CHARS) {
		return chr, nil
	}

	cur := 0
	for _, block := range l.registry.Get(segment.CHARS).Blocks {
		block.Address = uint16(cur)
		bytes, err := l.resolveBlock(block)
		if err != nil {
			return nil, err
		}
		if cur+len(bytes) > ines.CHRSize {
			return nil, linkErr(asmerr.ROMOverflow, fmt.Errorf("CHARS content at offset %d overflows %d-byte CHR ROM", cur, ines.CHRSize))
		}
		copy(chr[cur:], bytes)
		cur += len(bytes)
	}
	return chr, nil
}

// buildHeader returns the explicit HEADER segment's bytes if the assembly
// source declared one, otherwise synthesizes the standard 16-byte iNES
// header from cfg.
func (l *linker) buildHeader() ([]byte, error) {
	if !l.registry.Has(segment.HEADER) {
		return ines.Header(l.cfg.VerticalMirroring), nil
	}

	var header []byte
	cur := 0
	for _, block := range l.registry.Get(segment.HEADER).Blocks {
		block.Address = uint16(cur)
		bytes, err := l.resolveBlock(block)
		if err != nil {
			return nil, err
		}
		header = append(header, bytes...)
		cur += len(bytes)
	}
	if len(header) != ines.HeaderSize {
		return nil, linkErr(asmerr.LayoutInconsistency,
			fmt.Errorf("HEADER segment is %d bytes, want %d", len(header), ines.HeaderSize))
	}
	return header, nil
}

func (l *linker) resolveBlock(block *segment.Block) ([]byte, error) {
	if block.IsCode() {
		return l.resolveCodeBlock(block)
	}
	return l.resolveDataBlock(block)
}

func (l *linker) resolveDataBlock(block *segment.Block) ([]byte, error) {
	out := append([]byte(nil), block.Data...)
	for _, reloc := range block.Relocations {
		v, err := l.resolveSymbol(reloc.Symbol)
		if err != nil {
			return nil, err
		}
		switch reloc.Size {
		case segment.RelocByteLo:
			out[reloc.Offset] = byte(v)
		case segment.RelocByteHi:
			out[reloc.Offset] = byte(v >> 8)
		case segment.RelocWord:
			out[reloc.Offset] = byte(v)
			out[reloc.Offset+1] = byte(v >> 8)
		}
	}
	return out, nil
}

func (l *linker) resolveCodeBlock(block *segment.Block) ([]byte, error) {
	var out []byte
	offset := 0
	for _, ins := range block.Instructions {
		pc := int(block.Address) + offset
		bytes, err := l.encodeInstruction(ins, pc)
		if err != nil {
			return nil, err
		}
		out = append(out, bytes...)
		offset += len(bytes)
	}
	return out, nil
}

// encodeInstruction re-emits one instruction's bytes now that pc (the
// instruction's own absolute address) is known, per §4.5's fixup rules.
func (l *linker) encodeInstruction(ins segment.Instruction, pc int) ([]byte, error) {
	switch ins.Mode {
	case m6502.ImpliedAddressing, m6502.AccumulatorAddressing:
		return []byte{ins.Opcode}, nil

	case m6502.RelativeAddressing:
		target, err := l.operandValue(ins.Operand)
		if err != nil {
			return nil, err
		}
		disp := target - (pc + 2)
		if disp < -128 || disp > 127 {
			return nil, linkErr(asmerr.BranchOutOfRange, fmt.Errorf("branch displacement %d out of range at $%04X", disp, pc))
		}
		return []byte{ins.Opcode, byte(int8(disp))}, nil

	case m6502.ImmediateAddressing:
		v, err := l.immediateByte(ins.Operand)
		if err != nil {
			return nil, err
		}
		return []byte{ins.Opcode, v}, nil

	case m6502.ZeroPageAddressing, m6502.ZeroPageXAddressing, m6502.ZeroPageYAddressing,
		m6502.IndirectXAddressing, m6502.IndirectYAddressing:
		v, err := l.operandValue(ins.Operand)
		if err != nil {
			return nil, err
		}
		return []byte{ins.Opcode, byte(v)}, nil

	case m6502.AbsoluteAddressing, m6502.AbsoluteXAddressing, m6502.AbsoluteYAddressing, m6502.IndirectAddressing:
		v, err := l.operandValue(ins.Operand)
		if err != nil {
			return nil, err
		}
		return []byte{ins.Opcode, byte(v), byte(v >> 8)}, nil

	default:
		return nil, linkErr(asmerr.InvalidMode, fmt.Errorf("instruction %s has no fixup rule for mode %d", ins.Mnemonic, ins.Mode))
	}
}

func (l *linker) immediateByte(op segment.Operand) (byte, error) {
	switch op.Kind {
	case segment.OperandImmediateByte:
		return byte(op.Value), nil
	case segment.OperandImmediateLow:
		v, err := l.resolveSymbol(op.Symbol)
		if err != nil {
			return 0, err
		}
		return byte(v), nil
	case segment.OperandImmediateHigh:
		v, err := l.resolveSymbol(op.Symbol)
		if err != nil {
			return 0, err
		}
		return byte(v >> 8), nil
	default:
		return 0, linkErr(asmerr.InvalidMode, fmt.Errorf("unexpected immediate operand kind %d", op.Kind))
	}
}

func (l *linker) operandValue(op segment.Operand) (int, error) {
	switch op.Kind {
	case segment.OperandValue:
		return int(op.Value), nil
	case segment.OperandLabel:
		return l.resolveSymbol(op.Symbol)
	default:
		return 0, linkErr(asmerr.InvalidMode, fmt.Errorf("unexpected operand kind %d", op.Kind))
	}
}

func (l *linker) resolveSymbol(name string) (int, error) {
	v, ok := l.symbols.Lookup(name)
	if !ok {
		return 0, linkErr(asmerr.UnresolvedSymbol, fmt.Errorf("symbol %q is not resolved", name))
	}
	return int(v), nil
}
