package m6502

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeByte(t *testing.T) {
	t.Run("known combination returns byte", func(t *testing.T) {
		b, err := OpcodeByte("LDA", ImmediateAddressing)
		assert.NoError(t, err)
		assert.Equal(t, byte(0xA9), b)
	})

	t.Run("zero page fold for STA", func(t *testing.T) {
		b, err := OpcodeByte("STA", ZeroPageAddressing)
		assert.NoError(t, err)
		assert.Equal(t, byte(0x85), b)
	})

	t.Run("unknown combination returns error", func(t *testing.T) {
		_, err := OpcodeByte("LDA", IndirectAddressing)
		assert.Error(t, err)
	})
}

func TestIsValid(t *testing.T) {
	t.Run("JMP supports absolute and indirect only", func(t *testing.T) {
		assert.True(t, IsValid("JMP", AbsoluteAddressing))
		assert.True(t, IsValid("JMP", IndirectAddressing))
		assert.False(t, IsValid("JMP", ZeroPageAddressing))
	})

	t.Run("STA has no immediate mode", func(t *testing.T) {
		assert.False(t, IsValid("STA", ImmediateAddressing))
	})
}

func TestIsMnemonic(t *testing.T) {
	assert.True(t, IsMnemonic("LDA"))
	assert.True(t, IsMnemonic("NOP"))
	assert.False(t, IsMnemonic("FOO"))
}

func TestAddressingModeSize(t *testing.T) {
	t.Run("implied is 1 byte", func(t *testing.T) {
		size, ok := ImpliedAddressing.Size()
		assert.True(t, ok)
		assert.Equal(t, 1, size)
	})

	t.Run("absolute is 3 bytes", func(t *testing.T) {
		size, ok := AbsoluteAddressing.Size()
		assert.True(t, ok)
		assert.Equal(t, 3, size)
	})
}

func TestBranchMnemonics(t *testing.T) {
	assert.True(t, BranchMnemonics["BEQ"])
	assert.True(t, BranchMnemonics["BNE"])
	assert.False(t, BranchMnemonics["JMP"])
}
