package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEOL(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "empty", data: "", want: ""},
		{name: "no terminator", data: "key=value", want: ""},
		{name: "unix", data: "key=value\n", want: UnixEOL},
		{name: "windows", data: "key=value\r\n", want: WindowsEOL},
		{name: "mixed first wins", data: "a=1\r\nb=2\n", want: WindowsEOL},
		{name: "mixed unix first", data: "a=1\nb=2\r\n", want: UnixEOL},
		{name: "bare newline first char", data: "\nkey=value", want: UnixEOL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEOL([]byte(tt.data)))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		want       []string
		terminated bool
	}{
		{name: "empty", data: "", want: nil, terminated: true},
		{name: "single terminated", data: "a=1\n", want: []string{"a=1"}, terminated: true},
		{name: "single unterminated", data: "a=1", want: []string{"a=1"}, terminated: false},
		{name: "windows", data: "a=1\r\nb=2\r\n", want: []string{"a=1", "b=2"}, terminated: true},
		{name: "mixed", data: "a=1\r\nb=2\n", want: []string{"a=1", "b=2"}, terminated: true},
		{name: "blank middle", data: "a=1\n\nb=2\n", want: []string{"a=1", "", "b=2"}, terminated: true},
		{name: "trailing blank line", data: "a=1\n\n", want: []string{"a=1", ""}, terminated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, terminated := SplitLines([]byte(tt.data))
			assert.Equal(t, tt.want, lines)
			assert.Equal(t, tt.terminated, terminated)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   \t"))
	assert.False(t, IsBlank(" a"))
}

func TestIsComment(t *testing.T) {
	assert.True(t, IsComment("# comment"))
	assert.True(t, IsComment("  ; comment"))
	assert.False(t, IsComment("key=value"))
	assert.False(t, IsComment(""))
}

func TestNeedsQuoting(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: false},
		{value: "plain", want: false},
		{value: "with spaces inside", want: false},
		{value: " leading", want: true},
		{value: "trailing ", want: true},
		{value: `with "quote"`, want: true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsQuoting(tt.value), "value %q", tt.value)
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	values := []string{
		" value ",
		`inner "quoted" text`,
		`back\slash`,
		"",
	}
	for _, value := range values {
		quoted := Quote(value)
		got, ok := Unquote(quoted)
		assert.True(t, ok, "quoted %q", quoted)
		assert.Equal(t, value, got)
	}
}

func TestUnquoteUnquoted(t *testing.T) {
	got, ok := Unquote("plain")
	assert.False(t, ok)
	assert.Equal(t, "plain", got)

	// A lone quote is not a quoted value.
	got, ok = Unquote(`"`)
	assert.False(t, ok)
	assert.Equal(t, `"`, got)
}
