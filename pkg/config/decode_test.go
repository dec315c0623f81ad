package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	conf := Parse(strings.NewReader(`name=example
threads=8
verbose=true
tag=alpha
tag=beta

[limits]
memory=512
[mirror]
url=https://one.example
[mirror]
url=https://two.example
`))
	require.True(t, conf.IsValid())

	type mirror struct {
		URL string `mapstructure:"url"`
	}
	var out struct {
		Name    string   `mapstructure:"name"`
		Threads int      `mapstructure:"threads"`
		Verbose bool     `mapstructure:"verbose"`
		Tags    []string `mapstructure:"tag"`
		Limits  struct {
			Memory int `mapstructure:"memory"`
		} `mapstructure:"limits"`
		Mirrors []mirror `mapstructure:"mirror"`
	}
	require.NoError(t, conf.Decode(&out))

	assert.Equal(t, "example", out.Name)
	assert.Equal(t, 8, out.Threads)
	assert.True(t, out.Verbose)
	assert.Equal(t, []string{"alpha", "beta"}, out.Tags)
	assert.Equal(t, 512, out.Limits.Memory)
	assert.Equal(t, []mirror{{URL: "https://one.example"}, {URL: "https://two.example"}}, out.Mirrors)
}

func TestDecodeIntoMap(t *testing.T) {
	conf := Parse(strings.NewReader("key=value\n[group]\na=1\n"))
	require.True(t, conf.IsValid())

	out := map[string]any{}
	require.NoError(t, conf.Decode(&out))
	assert.Equal(t, "value", out["key"])
	assert.Equal(t, map[string]any{"a": "1"}, out["group"])
}
