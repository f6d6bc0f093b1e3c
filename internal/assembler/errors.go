package assembler

import "fmt"

func errNoMatchingIf(directive string) error {
	return fmt.Errorf("%s without matching .if", directive)
}

func errNoActiveSegment(what string) error {
	return fmt.Errorf("%s outside of any .segment", what)
}

func errMalformedSegment(rest string) error {
	return fmt.Errorf("malformed .segment directive: %q", rest)
}

func errEmptyDefine() error {
	return fmt.Errorf(".define requires a name")
}

func errUnresolvedDefine(name string) error {
	return fmt.Errorf(".define %s value did not resolve", name)
}

func errUnknownMnemonic(mnemonic string) error {
	return fmt.Errorf("unknown mnemonic %q", mnemonic)
}

func errResInCode() error {
	return fmt.Errorf(".res in a code segment is not supported")
}

func errEmptyRes() error {
	return fmt.Errorf(".res requires a byte count")
}

func errUnresolvedRes() error {
	return fmt.Errorf(".res argument did not resolve")
}

func errUnresolvedByte(field string) error {
	return fmt.Errorf(".byte operand %q did not resolve and is not a <label/>label reference", field)
}

func errUnresolvedWord(field string) error {
	return fmt.Errorf(".word/.addr operand %q did not resolve and is not a plain label reference", field)
}
