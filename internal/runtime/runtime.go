// Package runtime holds the external NES runtime library's calling contract:
// a manifest of callable method names, and the well-known register names a
// hand-written assembly source file may reference directly.
package runtime

import (
	"fmt"

	retrom6502 "github.com/retroenv/retrogolib/arch/cpu/m6502"
	"github.com/retroenv/retrogolib/arch/system/nes/register"
)

// Method describes one runtime-library entry point: its calling convention
// (argument count, whether it returns a value) and its absolute PRG address,
// supplied by the external collaborator per spec.md §6's runtime-library
// contract.
type Method struct {
	Name    string
	Args    int
	Returns bool
	Address uint16
}

// Table is the loaded runtime-library manifest, keyed by method name.
type Table struct {
	methods map[string]Method
}

// Load builds a Table from a manifest. Duplicate method names are a build
// configuration error, not a source error, so it fails fast.
func Load(methods []Method) (*Table, error) {
	t := &Table{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		if _, exists := t.methods[m.Name]; exists {
			return nil, fmt.Errorf("runtime method %q declared twice", m.Name)
		}
		t.methods[m.Name] = m
	}
	return t, nil
}

// Lookup returns the method descriptor for name.
func (t *Table) Lookup(name string) (Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}

// Addresses returns every method's name mapped to its PRG entry address, the
// shape the linker needs to resolve `.import`ed method names as symbols.
func (t *Table) Addresses() map[string]uint16 {
	out := make(map[string]uint16, len(t.methods))
	for name, m := range t.methods {
		out[name] = m.Address
	}
	return out
}

// RegisterConstants returns the well-known PPU/APU/controller register
// names mapped to their memory-mapped address, built from retrogolib's
// register package the same way the teacher's Arch6502.Constants builds the
// reverse (address -> name) direction. Seeded into the assembler's symbol
// table (assembler.AssembleWithConstants), they let the main assembly source
// reference e.g. PPUCTRL or OAMDMA without a `.define`; the CHR/data reader
// resolves no names.
func RegisterConstants() map[string]uint16 {
	out := make(map[string]uint16)
	mergeRegisterNames(out, register.PPUAddressToName)
	mergeRegisterNames(out, register.APUAddressToName)
	mergeRegisterNames(out, register.ControllerAddressToName)
	return out
}

func mergeRegisterNames(dest map[string]uint16, src map[uint16]retrom6502.AccessModeConstant) {
	for address, info := range src {
		if info.Constant == "" {
			continue
		}
		dest[info.Constant] = address
	}
}
