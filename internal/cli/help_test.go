package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllCommandsHaveDescriptions walks the command tree and verifies
// every command has Use, Short, and Long set.
func TestAllCommandsHaveDescriptions(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
			assert.NotEmpty(t, cmd.Long)
			assert.LessOrEqual(t, len(cmd.Short), 80)
		})
	})
}

// TestAllFlagsHaveDescriptions verifies every registered flag has usage text.
func TestAllFlagsHaveDescriptions(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			t.Run(cmd.CommandPath()+"/--"+f.Name, func(t *testing.T) {
				assert.NotEmpty(t, f.Usage)
			})
		})
	})
}

func TestWalkCommandsVisitsAll(t *testing.T) {
	var visited []string
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		visited = append(visited, cmd.CommandPath())
	})

	for _, expected := range []string{
		"deeplink",
		"deeplink open",
		"deeplink handle",
		"deeplink status",
		"deeplink reset",
		"deeplink wallets",
		"deeplink serve",
		"deeplink config",
		"deeplink config init",
		"deeplink config show",
		"deeplink config get",
		"deeplink config set",
		"deeplink completion",
		"deeplink version",
	} {
		assert.Contains(t, visited, expected)
	}
}

func TestConfigHelpListsSubcommands(t *testing.T) {
	buf := new(bytes.Buffer)
	configCmd.SetOut(buf)
	t.Cleanup(func() { configCmd.SetOut(nil) })

	require.NoError(t, configCmd.Help())
	assert.Contains(t, buf.String(), "Available Commands:")
	for _, sub := range configCmd.Commands() {
		assert.Contains(t, buf.String(), sub.Name())
	}
}

func newNoopRun() func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {}
}

func TestEnrichParentLong(t *testing.T) {
	parent := &cobra.Command{Use: "parent", Short: "Parent", Long: "Base description."}
	visible := &cobra.Command{Use: "sub1", Short: "First subcommand", Run: newNoopRun()}
	hidden := &cobra.Command{Use: "hidden", Short: "Hidden command", Hidden: true, Run: newNoopRun()}
	parent.AddCommand(visible, hidden)

	enrichParentLong(parent)

	assert.Contains(t, parent.Long, "Base description.")
	assert.Contains(t, parent.Long, "Subcommands:")
	assert.Contains(t, parent.Long, "First subcommand")
	assert.NotContains(t, parent.Long, "Hidden command")
}

func TestEnrichParentLong_NoSubcommands(t *testing.T) {
	leaf := &cobra.Command{Use: "leaf", Short: "A leaf", Long: "Leaf description."}

	enrichParentLong(leaf)

	assert.Equal(t, "Leaf description.", leaf.Long)
}

func TestHelpOutputContainsGlobalFlags(t *testing.T) {
	buf := new(bytes.Buffer)
	openCmd.SetOut(buf)
	t.Cleanup(func() { openCmd.SetOut(nil) })

	require.NoError(t, openCmd.Help())
	for _, flag := range []string{"--home", "--output", "--verbose", "--mobile", "--no-wait"} {
		assert.Contains(t, buf.String(), flag)
	}
}
