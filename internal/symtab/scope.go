package symtab

import "strings"

// IsLocalLabel returns whether name is a ca65 local label (begins with `@`).
func IsLocalLabel(name string) bool {
	return strings.HasPrefix(name, "@")
}

// CanonicalLocalName returns the key a local label is stored under: it is
// scoped to the most recent preceding non-local label. Non-local names are
// returned unchanged.
func CanonicalLocalName(scope, name string) string {
	if !IsLocalLabel(name) {
		return name
	}
	return scope + ":" + name
}

// Scope tracks the current non-local label while an assembler pass walks
// source lines in order, so it can canonicalize local-label references as
// it encounters them.
type Scope struct {
	current string
}

// Enter updates the active scope when a non-local label is declared. Local
// labels never change the scope.
func (s *Scope) Enter(name string) {
	if !IsLocalLabel(name) {
		s.current = name
	}
}

// Canonical returns the canonical key for name under the current scope.
func (s *Scope) Canonical(name string) string {
	return CanonicalLocalName(s.current, name)
}

// Current returns the active non-local label scope.
func (s *Scope) Current() string {
	return s.current
}
