// Package codegen implements the runtime-call codegen adapter (spec.md
// §4.6): it drains a bytecode.EventSource and emits the 6502 push/JSR
// instruction sequence each call requires into a single code block, which
// becomes the entry point STARTUP invokes.
package codegen

import (
	"fmt"

	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/bytecode"
	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/runtime"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// argSlotBase is the first zero-page cell the runtime library's calling
// convention reserves for the second and later pushed arguments; the first
// argument always goes in A (or A/X for a 16-bit value), per spec.md §4.6.
const argSlotBase = 0xF0

// pending is one not-yet-consumed pushed argument, value or symbolic.
type pending struct {
	word   bool
	byteV  byte
	wordV  uint16
	symbol string // set for EventLoadString: an address-of-label push
}

// Adapter owns no per-method logic beyond the push/JSR pattern; method
// dispatch is entirely data-driven through the runtime.Table it's built
// with.
type Adapter struct {
	file    string
	methods *runtime.Table
	symbols *symtab.Table
	stack   []pending
}

// NewAdapter builds an Adapter. methods is the runtime-library manifest;
// symbols is the assembler's symbol table, into which called method names
// are declared as imports for the linker to resolve.
func NewAdapter(file string, methods *runtime.Table, symbols *symtab.Table) *Adapter {
	return &Adapter{file: file, methods: methods, symbols: symbols}
}

// Run drains source to completion, returning the single code block of
// emitted instructions.
func (a *Adapter) Run(source bytecode.EventSource) (*segment.Block, error) {
	block := &segment.Block{Label: "bytecode_entry"}
	for {
		ev, ok, err := source.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return block, nil
		}

		switch ev.Kind {
		case bytecode.EventLoadConstantByte:
			a.stack = append(a.stack, pending{byteV: ev.ByteValue})
		case bytecode.EventLoadConstantWord:
			a.stack = append(a.stack, pending{word: true, wordV: ev.WordValue})
		case bytecode.EventLoadString:
			a.stack = append(a.stack, pending{word: true, symbol: ev.StringValue})
		case bytecode.EventCall:
			if err := a.emitCall(block, ev); err != nil {
				return nil, err
			}
		case bytecode.EventReturn:
			block.Instructions = append(block.Instructions, rts())
		default:
			return nil, asmerr.AtMethod(asmerr.Syntax, ev.Origin, ev.Offset, fmt.Errorf("unknown event kind %d", ev.Kind))
		}
	}
}

// emitCall validates the pushed argument count against the method's
// declared signature, emits the argument-slot placement code, then the call
// itself: a JSR against an imported symbol the linker resolves to the
// method's absolute PRG address.
func (a *Adapter) emitCall(block *segment.Block, ev bytecode.Event) error {
	method, ok := a.methods.Lookup(ev.Target)
	if !ok {
		return asmerr.AtMethod(asmerr.UnresolvedSymbol, ev.Origin, ev.Offset, fmt.Errorf("unknown runtime method %q", ev.Target))
	}
	if len(a.stack) != method.Args {
		return asmerr.AtMethod(asmerr.Syntax, ev.Origin, ev.Offset,
			fmt.Errorf("method %q expects %d argument(s), got %d", ev.Target, method.Args, len(a.stack)))
	}

	emitArgs(block, a.stack)
	a.stack = nil

	if !a.symbols.Has(ev.Target) {
		if err := a.symbols.DeclareImport(ev.Target); err != nil {
			return asmerr.AtMethod(asmerr.DuplicateSymbol, ev.Origin, ev.Offset, err)
		}
	}
	block.Instructions = append(block.Instructions, jsr(ev.Target))
	return nil
}

// emitArgs places the first argument in A (or A/X) and every later argument
// in successive zero-page cells starting at argSlotBase.
func emitArgs(block *segment.Block, args []pending) {
	cell := byte(argSlotBase)
	for i, p := range args {
		if i == 0 {
			emitFirstArg(block, p)
			continue
		}
		cell = emitExtraArg(block, cell, p)
	}
}

func emitFirstArg(block *segment.Block, p pending) {
	if !p.word {
		block.Instructions = append(block.Instructions, immediate("LDA", byteOperand(p.byteV)))
		return
	}
	if p.symbol != "" {
		block.Instructions = append(block.Instructions,
			immediate("LDA", lowOperand(p.symbol)), immediate("LDX", highOperand(p.symbol)))
		return
	}
	block.Instructions = append(block.Instructions,
		immediate("LDA", byteOperand(byte(p.wordV))), immediate("LDX", byteOperand(byte(p.wordV>>8))))
}

func emitExtraArg(block *segment.Block, cell byte, p pending) byte {
	if !p.word {
		block.Instructions = append(block.Instructions, immediate("LDA", byteOperand(p.byteV)), zeroPageStore(cell))
		return cell + 1
	}
	if p.symbol != "" {
		block.Instructions = append(block.Instructions,
			immediate("LDA", lowOperand(p.symbol)), zeroPageStore(cell),
			immediate("LDA", highOperand(p.symbol)), zeroPageStore(cell+1))
		return cell + 2
	}
	block.Instructions = append(block.Instructions,
		immediate("LDA", byteOperand(byte(p.wordV))), zeroPageStore(cell),
		immediate("LDA", byteOperand(byte(p.wordV>>8))), zeroPageStore(cell+1))
	return cell + 2
}

func byteOperand(v byte) segment.Operand {
	return segment.Operand{Kind: segment.OperandImmediateByte, Value: int32(v)}
}

func lowOperand(symbol string) segment.Operand {
	return segment.Operand{Kind: segment.OperandImmediateLow, Symbol: symbol}
}

func highOperand(symbol string) segment.Operand {
	return segment.Operand{Kind: segment.OperandImmediateHigh, Symbol: symbol}
}

func immediate(mnemonic string, operand segment.Operand) segment.Instruction {
	op, _ := m6502.OpcodeByte(mnemonic, m6502.ImmediateAddressing)
	return segment.Instruction{Mnemonic: mnemonic, Mode: m6502.ImmediateAddressing, Operand: operand, Opcode: op}
}

func zeroPageStore(addr byte) segment.Instruction {
	op, _ := m6502.OpcodeByte("STA", m6502.ZeroPageAddressing)
	return segment.Instruction{Mnemonic: "STA", Mode: m6502.ZeroPageAddressing, Operand: segment.Operand{Kind: segment.OperandValue, Value: int32(addr)}, Opcode: op}
}

func jsr(symbol string) segment.Instruction {
	op, _ := m6502.OpcodeByte(m6502.CallMnemonic, m6502.AbsoluteAddressing)
	return segment.Instruction{Mnemonic: m6502.CallMnemonic, Mode: m6502.AbsoluteAddressing, Operand: segment.Operand{Kind: segment.OperandLabel, Symbol: symbol}, Opcode: op}
}

func rts() segment.Instruction {
	op, _ := m6502.OpcodeByte(m6502.ReturnMnemonic, m6502.ImpliedAddressing)
	return segment.Instruction{Mnemonic: m6502.ReturnMnemonic, Mode: m6502.ImpliedAddressing, Opcode: op}
}
