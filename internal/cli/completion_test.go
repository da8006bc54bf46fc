package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			t.Cleanup(func() { completionCmd.SetOut(nil) })

			require.NoError(t, completionCmd.RunE(completionCmd, []string{shell}))
			assert.Contains(t, buf.String(), "deeplink")
		})
	}
}

func TestCompleteWallet(t *testing.T) {
	got, directive := completeWallet(openCmd, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Contains(t, got, "solflare\tSolflare")
	assert.Contains(t, got, "trustWallet\tTrust Wallet")

	got, _ = completeWallet(openCmd, []string{"solflare"}, "")
	assert.Empty(t, got)
}

func TestCompleteWalletAction(t *testing.T) {
	got, _ := completeWalletAction(openCmd, []string{"phantom"}, "")
	assert.Equal(t, []string{"connect", "signMessage", "browse"}, got)

	got, _ = completeWalletAction(openCmd, []string{"trust"}, "")
	assert.Equal(t, []string{"connect", "signMessage"}, got)

	got, _ = completeWalletAction(openCmd, []string{"metamask"}, "")
	assert.Empty(t, got)

	got, _ = completeWalletAction(openCmd, []string{"solflare", "connect"}, "")
	assert.Empty(t, got)
}
