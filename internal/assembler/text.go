package assembler

import "strings"

// stripComment removes a trailing `;...` comment, except inside a
// double-quoted string.
func stripComment(text string) string {
	inString := false
	for i, r := range text {
		switch r {
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return text[:i]
			}
		}
	}
	return text
}

// splitArgs splits a comma-separated argument list, never splitting inside
// a double-quoted string.
func splitArgs(text string) []string {
	var fields []string
	inString := false
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inString = !inString
		case ',':
			if !inString {
				fields = append(fields, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" || len(fields) > 0 {
		fields = append(fields, tail)
	}
	return fields
}

// isIdentStartByte reports whether r may begin an identifier, and
// isIdentByte whether r may appear in one, matching the expression
// evaluator's identifier syntax.
func isIdentStartByte(r byte) bool {
	return r == '_' || r == '@' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentByte(r byte) bool {
	return isIdentStartByte(r) || (r >= '0' && r <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStartByte(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// splitLabel splits a `name:` prefix (optionally followed by trailing
// content) from text. ok is false if text does not begin with an identifier
// immediately followed by a colon.
func splitLabel(text string) (label, rest string, ok bool) {
	idx := strings.IndexByte(text, ':')
	if idx <= 0 {
		return "", "", false
	}
	name := text[:idx]
	if !isIdentifier(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(text[idx+1:]), true
}

// splitAssignment recognizes `IDENT = expr`, where the `=` is not part of
// `<=`, `>=`, `!=` or `==`.
func splitAssignment(text string) (name, expr string, ok bool) {
	idx := findAssignmentEquals(text)
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(text[:idx])
	if !isIdentifier(name) {
		return "", "", false
	}
	expr = strings.TrimSpace(text[idx+1:])
	return name, expr, true
}

func findAssignmentEquals(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] != '=' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '=' {
			i++ // skip `==`
			continue
		}
		if i > 0 {
			switch text[i-1] {
			case '<', '>', '!', '=':
				continue
			}
		}
		return i
	}
	return -1
}

// splitDirective splits a line starting with `.` into its upper-cased
// directive keyword and the remaining text.
func splitDirective(text string) (directive, rest string) {
	i := 1
	for i < len(text) && isIdentByte(text[i]) {
		i++
	}
	return strings.ToUpper(text[:i]), strings.TrimSpace(text[i:])
}
