package codegen

import (
	"testing"

	"github.com/retroenv/nesasmgo/internal/bytecode"
	"github.com/retroenv/nesasmgo/internal/runtime"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
	"github.com/retroenv/retrogolib/assert"
)

func newMethods(t *testing.T, methods ...runtime.Method) *runtime.Table {
	t.Helper()
	tab, err := runtime.Load(methods)
	assert.NoError(t, err)
	return tab
}

func TestAdapterEmitsSingleByteArgCallAndReturn(t *testing.T) {
	methods := newMethods(t, runtime.Method{Name: "play_sound", Args: 1, Address: 0x8010})
	symbols := symtab.New()
	adapter := NewAdapter("bc.s", methods, symbols)

	src := bytecode.NewFakeSource([]bytecode.Event{
		{Kind: bytecode.EventLoadConstantByte, ByteValue: 7},
		{Kind: bytecode.EventCall, Target: "play_sound"},
		{Kind: bytecode.EventReturn},
	})

	block, err := adapter.Run(src)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(block.Instructions))

	assert.Equal(t, "LDA", block.Instructions[0].Mnemonic)
	assert.Equal(t, segment.OperandImmediateByte, block.Instructions[0].Operand.Kind)
	assert.Equal(t, int32(7), block.Instructions[0].Operand.Value)

	assert.Equal(t, "JSR", block.Instructions[1].Mnemonic)
	assert.Equal(t, segment.OperandLabel, block.Instructions[1].Operand.Kind)
	assert.Equal(t, "play_sound", block.Instructions[1].Operand.Symbol)

	assert.Equal(t, "RTS", block.Instructions[2].Mnemonic)
	assert.True(t, symbols.Has("play_sound"))
}

func TestAdapterTwoArgsSecondGoesToZeroPage(t *testing.T) {
	methods := newMethods(t, runtime.Method{Name: "set_tile", Args: 2, Address: 0x8020})
	symbols := symtab.New()
	adapter := NewAdapter("bc.s", methods, symbols)

	src := bytecode.NewFakeSource([]bytecode.Event{
		{Kind: bytecode.EventLoadConstantByte, ByteValue: 1},
		{Kind: bytecode.EventLoadConstantByte, ByteValue: 2},
		{Kind: bytecode.EventCall, Target: "set_tile"},
	})

	block, err := adapter.Run(src)
	assert.NoError(t, err)

	// LDA #1 ; LDA #2 ; STA argSlotBase ; JSR set_tile
	assert.Equal(t, 4, len(block.Instructions))
	assert.Equal(t, "LDA", block.Instructions[0].Mnemonic)
	assert.Equal(t, int32(1), block.Instructions[0].Operand.Value)
	assert.Equal(t, "LDA", block.Instructions[1].Mnemonic)
	assert.Equal(t, int32(2), block.Instructions[1].Operand.Value)
	assert.Equal(t, "STA", block.Instructions[2].Mnemonic)
	assert.Equal(t, segment.OperandValue, block.Instructions[2].Operand.Kind)
	assert.Equal(t, int32(argSlotBase), block.Instructions[2].Operand.Value)
	assert.Equal(t, "JSR", block.Instructions[3].Mnemonic)
}

func TestAdapterWordArgUsesAAndX(t *testing.T) {
	methods := newMethods(t, runtime.Method{Name: "set_addr", Args: 1, Address: 0x8030})
	symbols := symtab.New()
	adapter := NewAdapter("bc.s", methods, symbols)

	src := bytecode.NewFakeSource([]bytecode.Event{
		{Kind: bytecode.EventLoadConstantWord, WordValue: 0x1234},
		{Kind: bytecode.EventCall, Target: "set_addr"},
	})

	block, err := adapter.Run(src)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(block.Instructions))
	assert.Equal(t, "LDA", block.Instructions[0].Mnemonic)
	assert.Equal(t, int32(0x34), block.Instructions[0].Operand.Value)
	assert.Equal(t, "LDX", block.Instructions[1].Mnemonic)
	assert.Equal(t, int32(0x12), block.Instructions[1].Operand.Value)
}

func TestAdapterUnknownMethodErrors(t *testing.T) {
	methods := newMethods(t)
	symbols := symtab.New()
	adapter := NewAdapter("bc.s", methods, symbols)

	src := bytecode.NewFakeSource([]bytecode.Event{
		{Kind: bytecode.EventCall, Target: "nope", Origin: "Main", Offset: 0},
	})
	_, err := adapter.Run(src)
	assert.Error(t, err)
}

func TestAdapterArgCountMismatchErrors(t *testing.T) {
	methods := newMethods(t, runtime.Method{Name: "needs_two", Args: 2, Address: 0x8040})
	symbols := symtab.New()
	adapter := NewAdapter("bc.s", methods, symbols)

	src := bytecode.NewFakeSource([]bytecode.Event{
		{Kind: bytecode.EventLoadConstantByte, ByteValue: 1},
		{Kind: bytecode.EventCall, Target: "needs_two"},
	})
	_, err := adapter.Run(src)
	assert.Error(t, err)
}
