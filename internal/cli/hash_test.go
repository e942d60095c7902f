package cli

import (
	"crypto/sha1" //nolint:gosec // G505: known-answer comparison only
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cryptocore/internal/config"
	"github.com/mrz1836/cryptocore/pkg/binview"
	"github.com/mrz1836/cryptocore/pkg/digest"
	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func decodeHashOutput(t *testing.T, out string) HashOutput {
	t.Helper()
	var result HashOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func TestHash_TextDefaultAlgorithm(t *testing.T) {
	out, err := executeCommand(t, "", "hash", "abc", "-o", "text", "--home", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  text\n", out)
}

func TestHash_JoinsArguments(t *testing.T) {
	out, err := executeCommand(t, "", "hash", "hello", "world", "-o", "json", "--home", t.TempDir())
	require.NoError(t, err)

	result := decodeHashOutput(t, out)
	assert.Equal(t, "sha256", result.Algorithm)
	assert.Equal(t, "hex", result.Encoding)
	require.Len(t, result.Results, 1)
	assert.Equal(t, sha256Hex("hello world"), result.Results[0].Digest)
	assert.Equal(t, 32, result.Results[0].Size)
}

func TestHash_AlgorithmFlag(t *testing.T) {
	out, err := executeCommand(t, "", "hash", "-a", "SHA-1", "abc", "-o", "json", "--home", t.TempDir())
	require.NoError(t, err)

	result := decodeHashOutput(t, out)
	assert.Equal(t, "sha1", result.Algorithm)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", result.Results[0].Digest)
	assert.Equal(t, 20, result.Results[0].Size)
}

func TestHash_ConfiguredAlgorithm(t *testing.T) {
	home := t.TempDir()
	fileCfg := config.Defaults()
	fileCfg.Digest.Algorithm = "blake3"
	require.NoError(t, config.Save(fileCfg, config.Path(home)))

	out, err := executeCommand(t, "", "hash", "abc", "-o", "json", "--home", home)
	require.NoError(t, err)

	want, err := digest.MakeHash(binview.FromString("abc"), digest.BLAKE3)
	require.NoError(t, err)

	result := decodeHashOutput(t, out)
	assert.Equal(t, "blake3", result.Algorithm)
	assert.Equal(t, hex.EncodeToString(want), result.Results[0].Digest)
}

func TestHash_FilesAndStdin(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.bin")
	require.NoError(t, os.WriteFile(first, []byte("file one"), 0o600))
	require.NoError(t, os.WriteFile(second, make([]byte, 5000), 0o600))

	out, err := executeCommand(t, "from stdin", "hash", "--stdin", "-f", first, "-f", second, "-o", "json", "--home", dir)
	require.NoError(t, err)

	result := decodeHashOutput(t, out)
	require.Len(t, result.Results, 3)

	assert.Equal(t, "-", result.Results[0].Source)
	assert.Equal(t, sha256Hex("from stdin"), result.Results[0].Digest)

	assert.Equal(t, first, result.Results[1].Source)
	assert.Equal(t, sha256Hex("file one"), result.Results[1].Digest)

	assert.Equal(t, second, result.Results[2].Source)
	assert.Equal(t, sha256Hex(string(make([]byte, 5000))), result.Results[2].Digest)
}

func TestHash_Base64Encoding(t *testing.T) {
	out, err := executeCommand(t, "", "hash", "-e", "base64", "-a", "sha1", "abc", "-o", "text", "--home", t.TempDir())
	require.NoError(t, err)

	sum := sha1.Sum([]byte("abc")) //nolint:gosec // G401: known-answer comparison only
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:])+"  text\n", out)
}

func TestHash_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no input", []string{"hash"}, coreerr.ErrInvalidInput},
		{"unknown algorithm", []string{"hash", "-a", "sha2566", "abc"}, coreerr.ErrUnsupportedAlgorithm},
		{"unavailable algorithm", []string{"hash", "-a", "md2", "abc"}, coreerr.ErrUnsupportedAlgorithm},
		{"raw encoding", []string{"hash", "-e", "raw", "abc"}, coreerr.ErrInvalidInput},
		{"bad encoding", []string{"hash", "-e", "base32", "abc"}, coreerr.ErrInvalidInput},
		{"missing file", []string{"hash", "-f", missing}, coreerr.ErrIO},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := append(tc.args, "--home", t.TempDir())
			_, err := executeCommand(t, "", args...)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHash_UnknownAlgorithmSuggests(t *testing.T) {
	_, err := executeCommand(t, "", "hash", "-a", "sha2566", "abc", "--home", t.TempDir())

	var ce *coreerr.CoreError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, `did you mean "sha256"?`, ce.Suggestion)
}

func TestAlgorithmFlag(t *testing.T) {
	var f algorithmFlag
	assert.Equal(t, "algorithm", f.Type())
	assert.Empty(t, f.String())

	c := config.Defaults()
	c.Digest.Algorithm = "sha512"
	alg, err := f.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, digest.SHA512, alg)

	require.NoError(t, f.Set("  Keccak256 "))
	assert.Equal(t, "keccak256", f.String())
	alg, err = f.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, digest.Keccak256, alg)

	c.Digest.Algorithm = "nope"
	_, err = (&algorithmFlag{}).resolve(c)
	require.ErrorIs(t, err, coreerr.ErrUnsupportedAlgorithm)
}

func TestHash_Expect(t *testing.T) {
	abc := sha256Hex("abc")

	t.Run("match", func(t *testing.T) {
		out, err := executeCommand(t, "", "hash", "abc", "--expect", abc, "-o", "text", "--home", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, abc+"  text\n", out)
	})

	t.Run("match in base64", func(t *testing.T) {
		sum := sha1.Sum([]byte("abc")) //nolint:gosec // G401: known-answer comparison only
		want := base64.StdEncoding.EncodeToString(sum[:])
		_, err := executeCommand(t, "", "hash", "-a", "sha1", "-e", "base64", "abc", "--expect", want, "--home", t.TempDir())
		require.NoError(t, err)
	})

	t.Run("mismatch names the inputs", func(t *testing.T) {
		dir := t.TempDir()
		good := filepath.Join(dir, "good.txt")
		bad := filepath.Join(dir, "bad.txt")
		require.NoError(t, os.WriteFile(good, []byte("abc"), 0o600))
		require.NoError(t, os.WriteFile(bad, []byte("abd"), 0o600))

		out, err := executeCommand(t, "", "hash", "-f", good, "-f", bad, "--expect", abc, "-o", "json", "--home", dir)
		require.ErrorIs(t, err, coreerr.ErrDigestMismatch)
		assert.Equal(t, coreerr.ExitGeneral, ExitCode(err))

		var ce *coreerr.CoreError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, bad, ce.Details["inputs"])

		result := decodeHashOutput(t, out)
		require.Len(t, result.Results, 2, "digests are printed before the mismatch is reported")
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := executeCommand(t, "", "hash", "abc", "--expect", abc[:40], "--home", t.TempDir())
		require.ErrorIs(t, err, coreerr.ErrDigestMismatch)
	})

	t.Run("undecodable", func(t *testing.T) {
		_, err := executeCommand(t, "", "hash", "abc", "--expect", "not-hex", "--home", t.TempDir())
		require.ErrorIs(t, err, coreerr.ErrInvalidInput)
	})
}

func TestCompleteAlgorithms(t *testing.T) {
	names, _ := completeAlgorithms(hashCmd, nil, "SHA3")
	assert.Contains(t, names, "sha3-256")
	assert.NotContains(t, names, "sha256")
}
