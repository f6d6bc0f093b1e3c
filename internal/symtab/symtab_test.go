package symtab

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTableDeclareAndLookup(t *testing.T) {
	t.Run("declare then lookup resolves", func(t *testing.T) {
		tbl := New()
		assert.NoError(t, tbl.Declare("FOO", KindConstant, 42))

		v, ok := tbl.Lookup("FOO")
		assert.True(t, ok)
		assert.Equal(t, int32(42), v)
	})

	t.Run("unknown name is unresolved", func(t *testing.T) {
		tbl := New()
		_, ok := tbl.Lookup("BAR")
		assert.False(t, ok)
	})

	t.Run("re-declaring with same value is not an error", func(t *testing.T) {
		tbl := New()
		assert.NoError(t, tbl.Declare("FOO", KindLabel, 10))
		assert.NoError(t, tbl.Declare("FOO", KindLabel, 10))
	})

	t.Run("re-declaring with a different value is a duplicate error", func(t *testing.T) {
		tbl := New()
		assert.NoError(t, tbl.Declare("FOO", KindLabel, 10))
		err := tbl.Declare("FOO", KindLabel, 11)
		assert.Error(t, err)
	})
}

func TestTableImports(t *testing.T) {
	t.Run("import starts unresolved", func(t *testing.T) {
		tbl := New()
		assert.NoError(t, tbl.DeclareImport("Runtime_DrawSprite"))

		_, ok := tbl.Lookup("Runtime_DrawSprite")
		assert.False(t, ok)
		assert.Equal(t, 1, len(tbl.Unresolved()))
	})

	t.Run("resolve supplies the address", func(t *testing.T) {
		tbl := New()
		assert.NoError(t, tbl.DeclareImport("Runtime_DrawSprite"))
		assert.NoError(t, tbl.Resolve("Runtime_DrawSprite", 0xC000))

		v, ok := tbl.Lookup("Runtime_DrawSprite")
		assert.True(t, ok)
		assert.Equal(t, int32(0xC000), v)
		assert.Equal(t, 0, len(tbl.Unresolved()))
	})

	t.Run("resolving an unknown symbol errors", func(t *testing.T) {
		tbl := New()
		err := tbl.Resolve("Missing", 1)
		assert.Error(t, err)
	})
}

func TestScopeCanonicalNames(t *testing.T) {
	t.Run("non-local name is unchanged", func(t *testing.T) {
		var s Scope
		s.Enter("main")
		assert.Equal(t, "loop", s.Canonical("loop"))
	})

	t.Run("local label scoped to most recent non-local label", func(t *testing.T) {
		var s Scope
		s.Enter("main")
		assert.Equal(t, "main:@loop", s.Canonical("@loop"))

		s.Enter("other")
		assert.Equal(t, "other:@loop", s.Canonical("@loop"))
	})

	t.Run("IsLocalLabel", func(t *testing.T) {
		assert.True(t, IsLocalLabel("@loop"))
		assert.False(t, IsLocalLabel("loop"))
	})
}
