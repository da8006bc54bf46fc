package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/output"
)

// walkCommands calls fn for cmd and then each descendant, parents first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong lists the visible subcommands of a parent at the end of
// its Long help. Leaf commands and parents with only hidden children are left alone.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	table := output.NewTable()
	table.SetIndent("  ")
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			table.AddRow(sub.Name(), sub.Short)
		}
	}

	cmd.Long = strings.TrimRight(cmd.Long, "\n") + "\n\nSubcommands:\n" + table.String()
}
