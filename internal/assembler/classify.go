package assembler

import (
	"strings"

	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/expr"
	"github.com/retroenv/nesasmgo/internal/segment"
	"github.com/retroenv/nesasmgo/internal/symtab"
)

// Warner receives non-fatal diagnostics, such as an unrecognized directive
// being silently skipped. A nil Warner discards them.
type Warner interface {
	Warnf(format string, args ...any)
}

type classifier struct {
	file  string
	table *symtab.Table
	scope *symtab.Scope
	warn  Warner

	lines   map[segment.Name][]*line
	order   []segment.Name
	current segment.Name
	hasSeg  bool

	cond *condStack
}

func newClassifier(file string, tab *symtab.Table, scope *symtab.Scope, warn Warner) *classifier {
	return &classifier{
		file:  file,
		table: tab,
		scope: scope,
		warn:  warn,
		lines: make(map[segment.Name][]*line),
		cond:  &condStack{},
	}
}

func (c *classifier) warnf(format string, args ...any) {
	if c.warn != nil {
		c.warn.Warnf(format, args...)
	}
}

// classify runs pass 1's line-level classification over source, recording
// the per-segment classified line lists in c.lines and the first-reference
// segment order in c.order.
func (c *classifier) classify(source string) error {
	for i, raw := range strings.Split(source, "\n") {
		origin := i + 1
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}

		if directive, rest := peekDirective(text); isCondDirective(directive) {
			if err := c.handleCond(directive, rest, origin); err != nil {
				return asmerr.AtLine(asmerr.Syntax, c.file, origin, err)
			}
			continue
		}

		if !c.cond.active() {
			continue
		}

		if err := c.processLine(text, origin); err != nil {
			return err
		}
	}
	return nil
}

func peekDirective(text string) (string, string) {
	if !strings.HasPrefix(text, ".") {
		return "", text
	}
	return splitDirective(text)
}

func isCondDirective(directive string) bool {
	switch directive {
	case ".IF", ".ELSE", ".ENDIF":
		return true
	default:
		return false
	}
}

func (c *classifier) handleCond(directive, rest string, origin int) error {
	switch directive {
	case ".IF":
		inner := strings.TrimSpace(rest)
		inner = strings.TrimPrefix(inner, "(")
		inner = strings.TrimSuffix(inner, ")")
		v, ok, err := expr.TryEval(inner, foldLookup(c.table))
		if err != nil {
			return err
		}
		c.cond.pushIf(ok && v != 0)
		return nil
	case ".ELSE":
		return c.cond.toggleElse()
	case ".ENDIF":
		return c.cond.pop()
	default:
		return nil
	}
}

// processLine classifies one active, non-conditional line, recursing once
// when a label line carries trailing content (a fresh line per §4.3 step 6).
func (c *classifier) processLine(text string, origin int) error {
	if strings.HasPrefix(text, ".") {
		return c.processDirectiveLine(text, origin)
	}

	if name, rhs, ok := splitAssignment(text); ok {
		return c.processAssignment(name, rhs, origin)
	}

	if label, rest, ok := splitLabel(text); ok {
		return c.processLabel(label, rest, origin)
	}

	return c.processInstruction(text, origin)
}

func (c *classifier) processDirectiveLine(text string, origin int) error {
	directive, rest := splitDirective(text)
	switch directive {
	case dirSegment:
		name, err := parseSegmentOperand(rest)
		if err != nil {
			return asmerr.AtLine(asmerr.Syntax, c.file, origin, err)
		}
		c.setSegment(name)
		return nil

	case dirExport:
		// Informational only; no symbol-table effect.
		return nil

	case dirImport:
		for _, name := range splitArgs(rest) {
			if name == "" {
				continue
			}
			if err := c.table.DeclareImport(name); err != nil {
				return asmerr.AtLine(asmerr.DuplicateSymbol, c.file, origin, err)
			}
		}
		return nil

	case dirDefine:
		return c.processDefine(rest, origin)

	case dirByte, dirWord, dirAddr, dirRes:
		if !c.hasSeg {
			return asmerr.AtLine(asmerr.Syntax, c.file, origin,
				errNoActiveSegment(directive))
		}
		c.append(&line{Kind: lineDirective, Origin: origin, Segment: c.current, Directive: directive, Args: rest})
		return nil

	default:
		c.warnf("%s:%d: unrecognized directive %s ignored", c.file, origin, directive)
		return nil
	}
}

func (c *classifier) processDefine(rest string, origin int) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return asmerr.AtLine(asmerr.Syntax, c.file, origin, errEmptyDefine())
	}
	name := fields[0]
	exprText := strings.TrimSpace(strings.TrimPrefix(rest, name))
	value := int32(1)
	if exprText != "" {
		v, ok, err := expr.TryEval(exprText, foldLookup(c.table))
		if err != nil {
			return asmerr.AtLine(asmerr.Syntax, c.file, origin, err)
		}
		if !ok {
			return asmerr.AtLine(asmerr.UnresolvedSymbol, c.file, origin, errUnresolvedDefine(name))
		}
		value = v
	}
	if err := c.table.Declare(name, symtab.KindDefine, value); err != nil {
		return asmerr.AtLine(asmerr.DuplicateSymbol, c.file, origin, err)
	}
	return nil
}

func (c *classifier) processAssignment(name, exprText string, origin int) error {
	v, ok, err := expr.TryEval(exprText, foldLookup(c.table))
	if err != nil {
		return asmerr.AtLine(asmerr.Syntax, c.file, origin, err)
	}
	if ok {
		if err := c.table.Declare(name, symtab.KindConstant, v); err != nil {
			return asmerr.AtLine(asmerr.DuplicateSymbol, c.file, origin, err)
		}
		return nil
	}
	if !c.hasSeg {
		return asmerr.AtLine(asmerr.Syntax, c.file, origin, errNoActiveSegment("assignment"))
	}
	target := exprText
	if isIdentifier(target) && symtab.IsLocalLabel(target) {
		target = c.scope.Canonical(target)
	}
	c.append(&line{Kind: lineAssignment, Origin: origin, Segment: c.current, AssignName: name, AssignExpr: target})
	return nil
}

func (c *classifier) processLabel(name, rest string, origin int) error {
	if !c.hasSeg {
		return asmerr.AtLine(asmerr.Syntax, c.file, origin, errNoActiveSegment("label "+name))
	}
	canonical := name
	if symtab.IsLocalLabel(name) {
		canonical = c.scope.Canonical(name)
	} else {
		c.scope.Enter(name)
	}
	c.append(&line{Kind: lineLabel, Origin: origin, Segment: c.current, Label: canonical})
	if rest == "" {
		return nil
	}
	return c.processLine(rest, origin)
}

func (c *classifier) processInstruction(text string, origin int) error {
	if !c.hasSeg {
		return asmerr.AtLine(asmerr.Syntax, c.file, origin, errNoActiveSegment("instruction"))
	}
	fields := strings.SplitN(text, " ", 2)
	mnemonic := strings.ToUpper(strings.TrimSpace(fields[0]))
	operand := ""
	if len(fields) == 2 {
		operand = strings.TrimSpace(fields[1])
	}
	c.append(&line{Kind: lineInstruction, Origin: origin, Segment: c.current, Mnemonic: mnemonic, Operand: operand})
	return nil
}

func (c *classifier) setSegment(name segment.Name) {
	c.current = name
	c.hasSeg = true
	if _, ok := c.lines[name]; !ok {
		c.order = append(c.order, name)
		c.lines[name] = nil
	}
}

func (c *classifier) append(ln *line) {
	c.lines[ln.Segment] = append(c.lines[ln.Segment], ln)
}

func parseSegmentOperand(rest string) (segment.Name, error) {
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return "", errMalformedSegment(rest)
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end < 0 {
		return "", errMalformedSegment(rest)
	}
	name := segment.Name(strings.ToUpper(rest[start+1 : start+1+end]))
	return name, nil
}
