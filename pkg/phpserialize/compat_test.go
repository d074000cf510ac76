package phpserialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixtures below are verbatim output of PHP's serialize(). Each one must
// decode to the listed value, and encoding the value must reproduce the
// exact original bytes.
func TestPHPOutputCompatibility(t *testing.T) {
	tests := []struct {
		name string
		wire string
		val  any
	}{
		{"null", "N;", nil},
		{"true", "b:1;", true},
		{"false", "b:0;", false},
		{"int", "i:42;", int64(42)},
		{"int-negative", "i:-42;", int64(-42)},
		{"float", "d:3.14;", 3.14},
		{"float-whole", "d:5;", 5.0},
		{"string", `s:5:"hello";`, "hello"},
		{"string-empty", `s:0:"";`, ""},
		{"string-quote", `s:14:"single quote '";`, "single quote '"},
		{"sequence", `a:2:{i:0;s:3:"foo";i:1;s:3:"bar";}`, []any{"foo", "bar"}},
		{"sequence-empty", "a:0:{}", []any{}},
		{"tuple", `a:3:{i:0;s:4:"user";i:1;s:0:"";i:2;a:0:{}}`, []any{"user", "", []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			require.NoError(t, Unmarshal([]byte(tt.wire), &got))
			assert.Equal(t, tt.val, got)

			out, err := Marshal(tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.wire, string(out))
		})
	}
}

func TestPHPMappingCompatibility(t *testing.T) {
	// PHP preserves insertion order for string-keyed arrays; Go maps do
	// not, so only the decode direction can compare against raw bytes.
	wire := `a:3:{s:3:"foo";b:1;s:3:"bar";s:3:"xyz";s:3:"sub";a:1:{s:1:"x";i:42;}}`

	var got map[string]any
	require.NoError(t, Unmarshal([]byte(wire), &got))
	assert.Equal(t, map[string]any{
		"foo": true,
		"bar": "xyz",
		"sub": map[string]any{"x": int64(42)},
	}, got)

	// The encoded form sorts keys; it must still decode to the same value.
	out, err := Marshal(got)
	require.NoError(t, err)
	var again map[string]any
	require.NoError(t, Unmarshal(out, &again))
	assert.Equal(t, got, again)
}

func TestIsSerialized(t *testing.T) {
	valid := []string{
		"N;",
		"b:1;",
		"i:42;",
		"d:1.5;",
		`s:2:"hi";`,
		"a:0:{}",
		`O:8:"stdClass":0:{}`, // recognized even though decoding rejects it
	}
	for _, in := range valid {
		assert.True(t, IsSerialized([]byte(in)), in)
	}

	invalid := []string{
		"",
		"N",
		"Nx",
		"x:1;",
		"hello",
		"42",
	}
	for _, in := range invalid {
		assert.False(t, IsSerialized([]byte(in)), in)
	}
}
