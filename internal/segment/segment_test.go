package segment

import (
	"testing"

	"github.com/retroenv/nesasmgo/internal/m6502"
	"github.com/retroenv/retrogolib/assert"
)

func TestRegistryCreatesSegmentsInOrder(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Has(CODE))

	reg.Get(RODATA)
	reg.Get(CODE)
	reg.Get(RODATA) // already created, must not reorder

	assert.Equal(t, []Name{RODATA, CODE}, reg.Order())
}

func TestBlockLenForCode(t *testing.T) {
	b := &Block{
		Instructions: []Instruction{
			{Mnemonic: "LDA", Mode: m6502.ImmediateAddressing},
			{Mnemonic: "STA", Mode: m6502.AbsoluteAddressing},
			{Mnemonic: "RTS", Mode: m6502.ImpliedAddressing},
		},
	}
	assert.True(t, b.IsCode())
	assert.Equal(t, 6, b.Len()) // S1 scenario: 2 + 3 + 1
}

func TestBlockLenForData(t *testing.T) {
	b := &Block{Data: []byte{1, 2, 3, 4}}
	assert.False(t, b.IsCode())
	assert.Equal(t, 4, b.Len())
}

func TestSegmentSize(t *testing.T) {
	seg := New(CODE)
	seg.Append(&Block{Data: []byte{1, 2}})
	seg.Append(&Block{Instructions: []Instruction{{Mnemonic: "RTS", Mode: m6502.ImpliedAddressing}}})
	assert.Equal(t, 3, seg.Size())
}
