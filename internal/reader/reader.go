// Package reader implements the assembly reader: a reduced parser for
// hand-written ca65 source that supplies CHR graphics data and
// already-assembled raw byte routines. It recognizes exactly the two forms
// named in the component design - segment-scoped `.byte` runs, and
// `label:`-prefixed raw data blocks - and silently skips everything else.
package reader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/nesasmgo/internal/asmerr"
	"github.com/retroenv/nesasmgo/internal/expr"
	"github.com/retroenv/nesasmgo/internal/segment"
)

// ReadFile reads and parses path, returning a segment registry populated
// with raw data blocks.
func ReadFile(path string) (*segment.Registry, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is an explicit build input
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	reg, err := Read(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}

// Read parses assembly source text into a segment registry of raw data
// blocks, ignoring comments, blank lines and every directive other than
// `.segment` and `.byte`.
func Read(source string) (*segment.Registry, error) {
	reg := segment.NewRegistry()

	var currentSegment *segment.Segment
	var currentBlock *segment.Block

	flush := func() {
		if currentBlock != nil && len(currentBlock.Data) > 0 {
			currentSegment.Append(currentBlock)
		}
		currentBlock = nil
	}

	lines := strings.Split(source, "\n")
	for i, rawLine := range lines {
		line := stripComment(rawLine)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case isSegmentDirective(line):
			name, err := parseSegmentName(line)
			if err != nil {
				return nil, asmerr.AtLine(asmerr.Syntax, "", i+1, err)
			}
			flush()
			currentSegment = reg.Get(name)
			currentBlock = &segment.Block{}

		case isLabelLine(line):
			label, rest := splitLabel(line)
			if currentBlock == nil || currentSegment == nil {
				return nil, asmerr.AtLine(asmerr.Syntax, "", i+1,
					fmt.Errorf("label %q outside of any .segment", label))
			}
			if currentBlock.Label == "" && len(currentBlock.Data) == 0 {
				currentBlock.Label = label
			} else {
				flush()
				currentBlock = &segment.Block{Label: label}
			}
			if rest != "" {
				if err := appendByteLine(currentBlock, rest); err != nil {
					return nil, asmerr.AtLine(asmerr.Syntax, "", i+1, err)
				}
			}

		case isByteDirective(line):
			if currentBlock == nil || currentSegment == nil {
				return nil, asmerr.AtLine(asmerr.Syntax, "", i+1,
					errors.New(".byte directive outside of any .segment"))
			}
			if err := appendByteLine(currentBlock, line); err != nil {
				return nil, asmerr.AtLine(asmerr.Syntax, "", i+1, err)
			}

		default:
			// Every other directive is skipped, per the component design.
		}
	}
	flush()

	return reg, nil
}

func stripComment(line string) string {
	inString := false
	for i, r := range line {
		switch r {
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

func isSegmentDirective(line string) bool {
	return strings.HasPrefix(strings.ToLower(line), ".segment")
}

func parseSegmentName(line string) (segment.Name, error) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", fmt.Errorf("malformed .segment directive: %q", line)
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return "", fmt.Errorf("unterminated string in .segment directive: %q", line)
	}
	name := strings.ToUpper(line[start+1 : start+1+end])
	return segment.Name(name), nil
}

func isByteDirective(line string) bool {
	return strings.HasPrefix(strings.ToLower(line), ".byte")
}

// isLabelLine reports whether line begins with `name:` - an identifier (or
// local `@name`) immediately followed by a colon.
func isLabelLine(line string) bool {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return false
	}
	name := line[:idx]
	if !isIdent(name) {
		return false
	}
	return true
}

func splitLabel(line string) (label, rest string) {
	idx := strings.IndexByte(line, ':')
	label = line[:idx]
	rest = strings.TrimSpace(line[idx+1:])
	return label, rest
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '@':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// appendByteLine parses a `.byte v1, v2, ...` directive (the `.byte` prefix
// may already have been stripped by the caller) and appends the resulting
// bytes to block.
func appendByteLine(block *segment.Block, line string) error {
	rest := line
	if isByteDirective(rest) {
		rest = strings.TrimSpace(rest[len(".byte"):])
	}

	for _, field := range splitTopLevel(rest, ',') {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) && len(field) >= 2 {
			for _, r := range field[1 : len(field)-1] {
				block.Data = append(block.Data, byte(r))
			}
			continue
		}
		v, ok, err := expr.TryEval(field, func(string) (int32, bool) { return 0, false })
		if err != nil {
			return fmt.Errorf("invalid .byte value %q: %w", field, err)
		}
		if !ok {
			return fmt.Errorf("unresolved .byte value %q", field)
		}
		block.Data = append(block.Data, byte(v))
	}
	return nil
}

// splitTopLevel splits on sep, but never inside a double-quoted string.
func splitTopLevel(s string, sep byte) []string {
	var fields []string
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case sep:
			if !inString {
				fields = append(fields, s[start:i])
				start = i + 1
			}
		}
	}
	fields = append(fields, s[start:])
	return fields
}
