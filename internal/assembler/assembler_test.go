package assembler

import (
	"testing"

	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
	"github.com/retroenv/retrogolib/assert"
)

func TestAssembleImmediateAndStore(t *testing.T) {
	src := `
.segment "CODE"
main:   lda #$42
        sta $0200
        rts
`
	reg, _, err := Assemble(src, "s1.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, "main", block.Label)
	assert.Equal(t, 3, len(block.Instructions))

	assert.Equal(t, byte(0xA9), block.Instructions[0].Opcode)
	assert.Equal(t, int32(0x42), block.Instructions[0].Operand.Value)
	assert.Equal(t, byte(0x8D), block.Instructions[1].Opcode)
	assert.Equal(t, int32(0x0200), block.Instructions[1].Operand.Value)
	assert.Equal(t, byte(0x60), block.Instructions[2].Opcode)
}

func TestAssembleBackwardBranchDeferred(t *testing.T) {
	src := `
.segment "CODE"
loop:   dex
        bne loop
        rts
`
	reg, _, err := Assemble(src, "s2.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, 3, len(block.Instructions))
	branch := block.Instructions[1]
	assert.Equal(t, byte(0xD0), branch.Opcode)
	assert.Equal(t, m6502.RelativeAddressing, branch.Mode)
	assert.Equal(t, segment.OperandLabel, branch.Operand.Kind)
	assert.Equal(t, "loop", branch.Operand.Symbol)
}

func TestAssembleForwardBranchAndZeroPageFold(t *testing.T) {
	src := `
.segment "CODE"
start:  lda #$00
        beq done
        sta $05
done:   rts
`
	reg, _, err := Assemble(src, "s3.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, byte(0xA9), block.Instructions[0].Opcode)
	assert.Equal(t, byte(0xF0), block.Instructions[1].Opcode)
	assert.Equal(t, segment.OperandLabel, block.Instructions[1].Operand.Kind)
	assert.Equal(t, "done", block.Instructions[1].Operand.Symbol)

	sta := block.Instructions[2]
	assert.Equal(t, byte(0x85), sta.Opcode)
	assert.Equal(t, m6502.ZeroPageAddressing, sta.Mode)
	assert.Equal(t, int32(0x05), sta.Operand.Value)
	assert.Equal(t, byte(0x60), block.Instructions[3].Opcode)

	// "done" attaches to the rts instruction, not a separate block.
	assert.Equal(t, "done", block.InstrLabels[3])
}

func TestAssembleWordRelocationOfLocalLabel(t *testing.T) {
	src := `
.segment "RODATA"
table:  .word entry
.segment "CODE"
entry:  rts
`
	reg, _, err := Assemble(src, "s4.s", nil)
	assert.NoError(t, err)

	table := reg.Get(segment.RODATA).Blocks[0]
	assert.Equal(t, "table", table.Label)
	assert.Equal(t, []byte{0, 0}, table.Data)
	assert.Equal(t, 1, len(table.Relocations))
	assert.Equal(t, 0, table.Relocations[0].Offset)
	assert.Equal(t, "entry", table.Relocations[0].Symbol)
	assert.Equal(t, segment.RelocWord, table.Relocations[0].Size)

	entry := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, "entry", entry.Label)
	assert.Equal(t, byte(0x60), entry.Instructions[0].Opcode)
}

func TestAssembleExpressionFolding(t *testing.T) {
	src := `
.segment "CODE"
        lda #<($1234 + 1)
        lda #>($1234 + 1)
`
	reg, _, err := Assemble(src, "s5.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, 2, len(block.Instructions))
	assert.Equal(t, byte(0xA9), block.Instructions[0].Opcode)
	assert.Equal(t, int32(0x35), block.Instructions[0].Operand.Value)
	assert.Equal(t, byte(0xA9), block.Instructions[1].Opcode)
	assert.Equal(t, int32(0x12), block.Instructions[1].Operand.Value)
}

func TestAssembleConditionalAssembly(t *testing.T) {
	src := `
.define DEBUG 0
.segment "CODE"
.if(DEBUG)
        lda #$FF
.else
        lda #$00
.endif
        rts
`
	reg, _, err := Assemble(src, "s6.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, 2, len(block.Instructions))
	assert.Equal(t, byte(0xA9), block.Instructions[0].Opcode)
	assert.Equal(t, int32(0x00), block.Instructions[0].Operand.Value)
	assert.Equal(t, byte(0x60), block.Instructions[1].Opcode)
}

// TestSizeStability checks invariant 1: pass-1's size estimate for every
// instruction matches its pass-2 emitted length.
func TestSizeStability(t *testing.T) {
	src := `
.segment "CODE"
main:   lda #$42
        sta $0200
        sta $05
        lda ($10,X)
        lda ($10),Y
        jmp (main)
        bne main
        rts
`
	tab := symtab.New()
	scope := &symtab.Scope{}
	c := newClassifier("sizes.s", tab, scope, nil)
	assert.NoError(t, c.classify(src))
	assert.NoError(t, c.computeOffsets())

	e := newEmitter("sizes.s", tab)
	reg, err := e.run(c)
	assert.NoError(t, err)

	lines := c.lines[segment.CODE]
	block := reg.Get(segment.CODE).Blocks[0]
	instrIdx := 0
	for _, ln := range lines {
		if ln.Kind != lineInstruction {
			continue
		}
		assert.Equal(t, ln.Size, block.Instructions[instrIdx].Size())
		instrIdx++
	}
}

func TestZeroPageFoldProducesTwoByteInstruction(t *testing.T) {
	src := `
.segment "CODE"
        sta $05
        sta $0500
`
	reg, _, err := Assemble(src, "fold.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, m6502.ZeroPageAddressing, block.Instructions[0].Mode)
	assert.Equal(t, 2, block.Instructions[0].Size())
	assert.Equal(t, m6502.AbsoluteAddressing, block.Instructions[1].Mode)
	assert.Equal(t, 3, block.Instructions[1].Size())
}

func TestResInCodeSegmentErrors(t *testing.T) {
	src := `
.segment "CODE"
.res 4
`
	_, _, err := Assemble(src, "res.s", nil)
	assert.Error(t, err)
}

func TestResInZeroPageAdvancesCursorOnly(t *testing.T) {
	src := `
.segment "ZEROPAGE"
counter: .res 1
flag:    .res 1
`
	_, tab, err := Assemble(src, "zp.s", nil)
	assert.NoError(t, err)

	counter, ok := tab.Get("counter")
	assert.True(t, ok)
	assert.Equal(t, int32(0x0000), counter.Value)

	flag, ok := tab.Get("flag")
	assert.True(t, ok)
	assert.Equal(t, int32(0x0001), flag.Value)
}

func TestResInRodataEmitsFillBytes(t *testing.T) {
	src := `
.segment "RODATA"
pad: .res 3, $FF
`
	reg, _, err := Assemble(src, "pad.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.RODATA).Blocks[0]
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, block.Data)
}

func TestDeferredAssignmentAliasesTargetBlock(t *testing.T) {
	src := `
.segment "CODE"
real:   rts
alias = real
`
	reg, tab, err := Assemble(src, "alias.s", nil)
	assert.NoError(t, err)

	block := reg.Get(segment.CODE).Blocks[0]
	assert.Equal(t, "real", block.Label)
	assert.Equal(t, []string{"alias"}, block.Aliases)
	assert.True(t, tab.Has("alias"))
}
