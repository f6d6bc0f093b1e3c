package assembler

import (
	"fmt"

	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// Assemble runs both passes of the ca65-subset assembler over source,
// returning the emitted block registry and the symbol table backing it.
// filename is used only to annotate error origins.
func Assemble(source, filename string, warn Warner) (*segment.Registry, *symtab.Table, error) {
	return AssembleWithConstants(source, filename, warn, nil)
}

// AssembleWithConstants is Assemble, but with a table of pre-declared
// constant symbols (such as well-known NES register names) seeded into the
// symbol table before either pass runs. A source line can then reference
// one of these names directly, the same as a name declared by `NAME = expr`.
func AssembleWithConstants(source, filename string, warn Warner, constants map[string]uint16) (*segment.Registry, *symtab.Table, error) {
	tab := symtab.New()
	for name, addr := range constants {
		if err := tab.Declare(name, symtab.KindConstant, int32(addr)); err != nil {
			return nil, nil, fmt.Errorf("seeding runtime constant %s: %w", name, err)
		}
	}

	scope := &symtab.Scope{}

	c := newClassifier(filename, tab, scope, warn)
	if err := c.classify(source); err != nil {
		return nil, nil, err
	}
	if err := c.computeOffsets(); err != nil {
		return nil, nil, err
	}

	e := newEmitter(filename, tab)
	registry, err := e.run(c)
	if err != nil {
		return nil, nil, err
	}
	return registry, tab, nil
}
