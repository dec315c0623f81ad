package confval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value int
		flags Flags
	}{
		{name: "decimal", text: "5", value: 5},
		{name: "negative", text: "-10", value: -10},
		{name: "octal", text: "0773", value: 0o773, flags: Oct},
		{name: "hex", text: "0x6ecab", value: 0x6ecab, flags: Hex},
		{name: "color", text: "#34f85e", value: 0x34f85e, flags: Color},
		{name: "zero", text: "0", value: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromString[int](tt.text, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)

			text, err := ToString(tt.value, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestIntParseVariants(t *testing.T) {
	// Uppercase hex digits parse, lowercase is written.
	got, err := FromString[int]("0x5462FF", Hex)
	require.NoError(t, err)
	assert.Equal(t, 0x5462FF, got)

	_, err = FromString[int]("5462FF", Hex)
	assert.Error(t, err, "hex without 0x prefix")

	_, err = FromString[int]("34f85e", Color)
	assert.Error(t, err, "color without # prefix")

	_, err = FromString[int]("not a number", 0)
	assert.Error(t, err)
}

func TestIntFormatEdgeCases(t *testing.T) {
	text, err := ToString(0, Oct)
	require.NoError(t, err)
	assert.Equal(t, "0", text)

	text, err = ToString(-0x1f, Hex)
	require.NoError(t, err)
	assert.Equal(t, "-0x1f", text)

	_, err = ToString(-1, Color)
	assert.Error(t, err, "negative color")

	_, err = ToString(0x1000000, Color)
	assert.Error(t, err, "color out of range")
}

func TestUintRoundTrip(t *testing.T) {
	got, err := FromString[uint32]("0xdeadbeef", Hex)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), got)

	text, err := ToString(uint32(0xdeadbeef), Hex)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", text)

	_, err = FromString[uint]("-1", 0)
	assert.Error(t, err)
}

func TestFloatRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value float64
		flags Flags
	}{
		{name: "plain", text: "3.78", value: 3.78},
		{name: "negative", text: "-2.14", value: -2.14},
		{name: "scientific", text: "2.1e+07", value: 2.1e7, flags: Scientific},
		{name: "scientific negative exponent", text: "2.1e-07", value: 2.1e-7, flags: Scientific},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromString[float64](tt.text, tt.flags)
			require.NoError(t, err)
			assert.InDelta(t, tt.value, got, 1e-12)

			text, err := ToString(tt.value, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestFloatParseAcceptsBothExponents(t *testing.T) {
	for _, s := range []string{"2.1e7", "2.1E7", "2.1e+7", "-2.1e7"} {
		got, err := FromString[float64](s, 0)
		require.NoError(t, err, "input %q", s)
		if s[0] == '-' {
			assert.InDelta(t, -2.1e7, got, 1)
		} else {
			assert.InDelta(t, 2.1e7, got, 1)
		}
	}
}

func TestBool(t *testing.T) {
	trueInputs := []string{"true", "yes", "on", "1", "TRUE", "Yes", "ON"}
	for _, s := range trueInputs {
		got, err := FromString[bool](s, 0)
		require.NoError(t, err, "input %q", s)
		assert.True(t, got, "input %q", s)
	}

	falseInputs := []string{"false", "no", "off", "0", "", "FALSE", "No"}
	for _, s := range falseInputs {
		got, err := FromString[bool](s, 0)
		require.NoError(t, err, "input %q", s)
		assert.False(t, got, "input %q", s)
	}

	_, err := FromString[bool]("maybe", 0)
	assert.Error(t, err)

	text, err := ToString(true, 0)
	require.NoError(t, err)
	assert.Equal(t, "true", text)
	text, err = ToString(false, 0)
	require.NoError(t, err)
	assert.Equal(t, "false", text)
}

func TestString(t *testing.T) {
	got, err := FromString[string](" anything ", 0)
	require.NoError(t, err)
	assert.Equal(t, " anything ", got)

	text, err := ToString("value", 0)
	require.NoError(t, err)
	assert.Equal(t, "value", text)
}
