package expr

import "strings"

// lexer walks a ca65 expression source string one rune at a time. It does
// not build a token stream: callers pull characters on demand, which keeps
// the unary-`>`-versus-shift-`>>` disambiguation local to the parser level
// that needs it (see parser.go).
type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) atEnd() bool {
	l.skipSpace()
	return l.pos >= len(l.src)
}

func (l *lexer) peek() rune {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peekAt returns the rune offset runes after the current position, without
// skipping whitespace in between - used only for 2-character operator checks.
func (l *lexer) peekAt(offset int) rune {
	idx := l.pos + offset
	if idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

func (l *lexer) advance() rune {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

// match consumes the next rune if it equals r.
func (l *lexer) match(r rune) bool {
	if l.peek() == r {
		l.pos++
		return true
	}
	return false
}

// matchStr consumes len(s) runes starting at the current (whitespace-skipped)
// position if they equal s exactly.
func (l *lexer) matchStr(s string) bool {
	l.skipSpace()
	runes := []rune(s)
	for i, r := range runes {
		if l.peekAt(i) != r {
			return false
		}
	}
	l.pos += len(runes)
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '@' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// readIdent reads an identifier starting at the current position. Caller
// must have confirmed isIdentStart(peek()) first.
func (l *lexer) readIdent() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

// readWhile reads runes satisfying pred starting at the current position.
func (l *lexer) readWhile(pred func(rune) bool) string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) remaining() string {
	return strings.TrimSpace(string(l.src[l.pos:]))
}
