package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cryptocore/internal/output"
)

// walkCommands visits every command in the tree depth-first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong appends a table of available subcommands to the Long
// description of a command group. The root command is left alone since cobra
// already lists its commands.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasSubCommands() || !cmd.HasParent() {
		return
	}

	table := output.NewTable()
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			table.AddRow("  "+sub.Name(), sub.Short)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(cmd.Long, "\n"))
	sb.WriteString("\n\nSubcommands:\n")
	sb.WriteString(table.String())
	cmd.Long = strings.TrimRight(sb.String(), "\n")
}
