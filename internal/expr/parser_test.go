package expr

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func noLookup(string) (int32, bool) { return 0, false }

//nolint:funlen // table-driven test covering the full grammar
func TestTryEvalClosedExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int32
	}{
		{"decimal", "42", 42},
		{"hex", "$1234", 0x1234},
		{"binary", "%1010", 0b1010},
		{"add", "1 + 2", 3},
		{"precedence", "2 + 3 * 4", 14},
		{"parens", "(2 + 3) * 4", 20},
		{"lobyte unary", "<$1234", 0x34},
		{"hibyte unary", ">$1234", 0x12},
		{"lobyte func", ".lobyte($1234+1)", 0x35},
		{"hibyte func", ".HIBYTE($1234+1)", 0x12},
		{"shift left", "1 << 4", 16},
		{"shift right", "$100 >> 4", 0x10},
		{"bitwise and", "$0F & $03", 0x03},
		{"bitwise or", "$0F | $F0", 0xFF},
		{"bitwise xor", "$0F ^ $01", 0x0E},
		{"bitwise not", "~0", -1},
		{"unary minus", "-5", -5},
		{"logical not true", "!0", 1},
		{"logical not false", "!5", 0},
		{"logical or", "0 || 5", 1},
		{"logical and", "0 && 5", 0},
		{"s5 low byte", "<($1234 + 1)", 0x35},
		{"s5 high byte", ">($1234 + 1)", 0x12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := TryEval(tt.src, noLookup)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestTryEvalUnresolvedIdentifier(t *testing.T) {
	v, ok, err := TryEval("UNKNOWN + 1", noLookup)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), v)
}

func TestTryEvalResolvedIdentifier(t *testing.T) {
	lookup := func(name string) (int32, bool) {
		if name == "FOO" {
			return 10, true
		}
		return 0, false
	}
	v, ok, err := TryEval("FOO * 2", lookup)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(20), v)
}

func TestTryEvalLocalLabelIdentifier(t *testing.T) {
	lookup := func(name string) (int32, bool) {
		if name == "@loop" {
			return 5, true
		}
		return 0, false
	}
	v, ok, err := TryEval("@loop", lookup)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(5), v)
}

func TestTryEvalDivisionByZero(t *testing.T) {
	_, _, err := TryEval("1 / 0", noLookup)
	assert.Error(t, err)
	assert.True(t, err == ErrDivisionByZero)
}

func TestTryEvalSyntaxError(t *testing.T) {
	_, _, err := TryEval("(1 + 2", noLookup)
	assert.Error(t, err)
}

// TestExpressionRoundTrip exercises property 5 from the specification for
// the $ and decimal literal forms: evaluating a formatted round trip of a
// value returns the original value.
func TestExpressionRoundTrip(t *testing.T) {
	values := []int32{0, 1, 42, 255, 256, 0x1234, 0xFFFF}

	for _, want := range values {
		hex := formatHex(want)
		v, ok, err := TryEval(hex, noLookup)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, v)

		dec := formatDecimal(want)
		v, ok, err = TryEval(dec, noLookup)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func formatHex(v int32) string {
	return "$" + hexDigits(uint32(v))
}

func formatDecimal(v int32) string {
	return decDigits(v)
}

func hexDigits(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{digits[v%16]}, buf...)
		v /= 16
	}
	return string(buf)
}

func decDigits(v int32) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		return "0"
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{byte('0' + v%10)}, buf...)
		v /= 10
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
