package asmerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("file and line origin", func(t *testing.T) {
		err := AtLine(UnknownMnemonic, "main.s", 12, errors.New(`"FOB"`))
		assert.Equal(t, `main.s:12: unknown mnemonic: "FOB"`, err.Error())
	})

	t.Run("bytecode method origin", func(t *testing.T) {
		err := AtMethod(UnresolvedSymbol, "Player.Draw", 3, errors.New("missing import"))
		assert.Equal(t, `Player.Draw+3: unresolved symbol: missing import`, err.Error())
	})
}

func TestKindOf(t *testing.T) {
	err := AtLine(BranchOutOfRange, "main.s", 5, errors.New("disp"))
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, BranchOutOfRange, kind)

	wrapped := fmt.Errorf("processing block: %w", err)
	kind, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, BranchOutOfRange, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
