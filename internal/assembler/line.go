// Package assembler implements the two-pass ca65-subset assembler: pass 1
// classifies source lines, resolves conditional assembly and computes
// per-segment byte offsets; pass 2 walks the classified lines again to
// emit blocks of instructions and data, with relocations against symbols
// the linker resolves later.
package assembler

import "github.com/retroenv/nesasmgo/internal/segment"

// lineKind identifies what a classified source line represents.
type lineKind uint8

const (
	lineLabel lineKind = iota
	lineInstruction
	lineDirective
	lineAssignment
)

// directive names recognized explicitly; anything else is silently skipped.
const (
	dirSegment = ".SEGMENT"
	dirExport  = ".EXPORT"
	dirImport  = ".IMPORT"
	dirDefine  = ".DEFINE"
	dirByte    = ".BYTE"
	dirWord    = ".WORD"
	dirAddr    = ".ADDR"
	dirRes     = ".RES"
)

// line is one classified source line, ready for offset computation (pass 1
// continuation) and emission (pass 2).
type line struct {
	Kind    lineKind
	Origin  int // 1-based source line number, for error reporting
	Segment segment.Name

	Label string // lineLabel

	Directive string // lineDirective, normalized upper-case (e.g. ".BYTE")
	Args      string // raw text following the directive keyword

	Mnemonic string // lineInstruction
	Operand  string // raw operand text, "" if none

	AssignName string // lineAssignment
	AssignExpr string

	// Populated by the offset-computation walk.
	Offset int
	Size   int
}
