package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkVisible visits every user-facing command, skipping cobra's generated
// help and hidden completion helpers.
func walkVisible(fn func(*cobra.Command)) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		if cmd.Hidden || cmd.Name() == "help" {
			return
		}
		fn(cmd)
	})
}

func TestAllCommandsHaveDescriptions(t *testing.T) {
	walkVisible(func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Short, "missing Short description")
			assert.NotEmpty(t, cmd.Long, "missing Long description")
			assert.LessOrEqual(t, len(cmd.Short), 80, "Short description too long")
		})
	})
}

// TestLeafCommandsHaveExamples verifies every runnable command has an
// Example that invokes cryptocore, and that no Long embeds examples.
func TestLeafCommandsHaveExamples(t *testing.T) {
	walkVisible(func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotContains(t, cmd.Long, "\nExample:")
			assert.NotContains(t, cmd.Long, "\nExamples:")

			if cmd.RunE == nil && cmd.Run == nil {
				return
			}
			assert.NotEmpty(t, cmd.Example, "leaf command missing Example field")
			assert.Contains(t, cmd.Example, "cryptocore")
		})
	})
}

func TestAllFlagsHaveDescriptions(t *testing.T) {
	walkVisible(func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			t.Run(cmd.CommandPath()+"/--"+f.Name, func(t *testing.T) {
				assert.NotEmpty(t, f.Usage, "flag has no description")
			})
		})
	})
}

func TestCommandGroupsAssigned(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.Contains(t, []string{groupCrypto, groupSetup}, cmd.GroupID)
		})
	}
}

func TestRootHelpContainsGroups(t *testing.T) {
	out, err := executeCommand(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Crypto Commands:")
	assert.Contains(t, out, "Setup Commands:")
	assert.Contains(t, out, "--home")
	assert.Contains(t, out, "--output")
	assert.Contains(t, out, "--verbose")
}

func TestWalkCommandsVisitsAll(t *testing.T) {
	var visited []string
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		visited = append(visited, cmd.CommandPath())
	})

	for _, expected := range []string{
		"cryptocore",
		"cryptocore hash",
		"cryptocore random",
		"cryptocore algorithms",
		"cryptocore config",
		"cryptocore config init",
		"cryptocore config show",
		"cryptocore config path",
		"cryptocore version",
		"cryptocore completion",
	} {
		assert.Contains(t, visited, expected)
	}
}

func newNoopRun() func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {}
}

// newTestTree creates root -> parent -> children so the parent qualifies
// for enrichment.
func newTestTree() (*cobra.Command, *cobra.Command) {
	root := &cobra.Command{Use: "root"}
	parent := &cobra.Command{Use: "parent", Short: "Parent", Long: "Base description.\n"}
	root.AddCommand(parent)
	parent.AddCommand(
		&cobra.Command{Use: "sub1", Short: "First subcommand", Run: newNoopRun()},
		&cobra.Command{Use: "longer-sub", Short: "Second subcommand", Run: newNoopRun()},
		&cobra.Command{Use: "hidden", Short: "Hidden command", Hidden: true, Run: newNoopRun()},
	)
	return root, parent
}

func TestEnrichParentLong(t *testing.T) {
	_, parent := newTestTree()

	enrichParentLong(parent)

	assert.Equal(t,
		"Base description.\n\nSubcommands:\n"+
			"  longer-sub  Second subcommand\n"+
			"  sub1        First subcommand",
		parent.Long)
	assert.NotContains(t, parent.Long, "hidden")
}

func TestEnrichParentLong_SkipsLeafAndRoot(t *testing.T) {
	root, parent := newTestTree()
	leaf := parent.Commands()[0]
	leaf.Long = "Leaf description."
	root.Long = "Root description."

	enrichParentLong(leaf)
	enrichParentLong(root)

	assert.Equal(t, "Leaf description.", leaf.Long)
	assert.Equal(t, "Root description.", root.Long)
}

func TestParentHelpListsSubcommands(t *testing.T) {
	buf := new(bytes.Buffer)
	configCmd.SetOut(buf)
	t.Cleanup(func() { configCmd.SetOut(nil) })

	require.NoError(t, configCmd.Help())
	help := buf.String()
	for _, sub := range configCmd.Commands() {
		assert.True(t, strings.Contains(help, sub.Name()), "missing %q", sub.Name())
	}
}
