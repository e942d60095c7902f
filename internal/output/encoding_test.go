package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cryptocore/internal/output"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

func TestParseEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  output.Encoding
	}{
		{"hex", output.EncodingHex},
		{"HEX", output.EncodingHex},
		{"base64", output.EncodingBase64},
		{"b64", output.EncodingBase64},
		{"raw", output.EncodingRaw},
		{" mnemonic ", output.EncodingMnemonic},
	}
	for _, tc := range tests {
		got, err := output.ParseEncoding(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got)
	}

	_, err := output.ParseEncoding("base32")
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	data := []byte{0xde, 0xad, 0xbe, 0xef}

	tests := []struct {
		enc  output.Encoding
		want string
	}{
		{output.EncodingHex, "deadbeef"},
		{output.EncodingBase64, "3q2+7w=="},
		{output.EncodingRaw, "\xde\xad\xbe\xef"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.enc), func(t *testing.T) {
			t.Parallel()
			got, err := output.Encode(data, tc.enc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			back, err := output.Decode(got, tc.enc)
			require.NoError(t, err)
			assert.Equal(t, data, back)
		})
	}

	_, err := output.Encode(data, output.Encoding("rot13"))
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)
	assert.True(t, output.EncodingHex.IsText())
	assert.False(t, output.EncodingRaw.IsText())
}

func TestEncode_Mnemonic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entropy []byte
		want    string
	}{
		{
			"all zero",
			make([]byte, 16),
			"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		},
		{
			"all 0x7f",
			bytes.Repeat([]byte{0x7f}, 16),
			"legal winner thank year wave sausage worth useful legal winner thank yellow",
		},
		{
			"all 0xff",
			bytes.Repeat([]byte{0xff}, 16),
			"zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := output.Encode(tc.entropy, output.EncodingMnemonic)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			back, err := output.Decode("  "+got+"\n", output.EncodingMnemonic)
			require.NoError(t, err)
			assert.Equal(t, tc.entropy, back)
		})
	}

	_, err := output.Encode(make([]byte, 15), output.EncodingMnemonic)
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := output.Decode("zz", output.EncodingHex)
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)

	_, err = output.Decode("!!!", output.EncodingBase64)
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)

	_, err = output.Decode("abandon zebra", output.EncodingMnemonic)
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)

	_, err = output.Decode("x", output.Encoding("nope"))
	require.ErrorIs(t, err, coreerr.ErrInvalidInput)
}
