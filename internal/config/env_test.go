package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "TRUE", "yes", "On", " t "} {
		assert.True(t, parseBool(s), "%q should enable", s)
	}
	for _, s := range []string{"0", "false", "no", "off", "", "maybe"} {
		assert.False(t, parseBool(s), "%q should disable", s)
	}
}

func TestParsePositive(t *testing.T) {
	t.Parallel()

	valid := map[string]int{"1": 1, " 48 ": 48, "10000": 10000}
	for in, want := range valid {
		got, ok := parsePositive(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"0", "-3", "1e3", "", "ten"} {
		got, ok := parsePositive(in)
		assert.False(t, ok, in)
		assert.Zero(t, got, in)
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"sha256":       "sha256",
		"BLAKE2B-512":  "blake2b-512",
		"  sha3_256\t": "sha3_256",
		`"sha1"`:       "sha1",
		"sha-512;":     "sha-512",
		"json\n":       "json",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}
