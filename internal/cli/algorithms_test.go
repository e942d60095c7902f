package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cryptocore/pkg/digest"
)

func findAlgorithm(infos []AlgorithmInfo, name string) (AlgorithmInfo, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return AlgorithmInfo{}, false
}

func TestAlgorithms_JSON(t *testing.T) {
	out, err := executeCommand(t, "", "algorithms", "-o", "json", "--home", t.TempDir())
	require.NoError(t, err)

	var infos []AlgorithmInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(digest.Supported()))

	sha, ok := findAlgorithm(infos, "sha256")
	require.True(t, ok)
	assert.Equal(t, AlgorithmInfo{Name: "sha256", Size: 32, Bits: 256, Supported: true}, sha)

	_, ok = findAlgorithm(infos, "md2")
	assert.False(t, ok)
}

func TestAlgorithms_All(t *testing.T) {
	out, err := executeCommand(t, "", "algs", "--all", "-o", "json", "--home", t.TempDir())
	require.NoError(t, err)

	var infos []AlgorithmInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(digest.Known()))

	md2, ok := findAlgorithm(infos, "md2")
	require.True(t, ok)
	assert.False(t, md2.Supported)
	assert.Zero(t, md2.Size)
}

func TestAlgorithms_Text(t *testing.T) {
	out, err := executeCommand(t, "", "algorithms", "--all", "-o", "text", "--home", t.TempDir())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2+len(digest.Known()))
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "----"))

	var shaLine, md2Line string
	for _, line := range lines {
		fields := strings.Fields(line)
		switch fields[0] {
		case "sha512":
			shaLine = line
		case "md2":
			md2Line = line
		}
	}
	assert.Equal(t, []string{"sha512", "64", "512", "available"}, strings.Fields(shaLine))
	assert.Equal(t, []string{"md2", "-", "-", "unavailable"}, strings.Fields(md2Line))
}
