package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/wallet"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for deeplink.

Wallet names and actions complete for open, status, and reset.

Bash:
  $ source <(deeplink completion bash)
  $ deeplink completion bash > /etc/bash_completion.d/deeplink

Zsh:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ deeplink completion zsh > "${fpath[1]}/_deeplink"

Fish:
  $ deeplink completion fish > ~/.config/fish/completions/deeplink.fish

PowerShell:
  PS> deeplink completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Annotations:           map[string]string{annotationTolerateConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(w)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeWallet completes a single wallet name argument.
func completeWallet(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return walletCompletions(), cobra.ShellCompDirectiveNoFileComp
}

// completeWalletAction completes a wallet name followed by one of its actions.
func completeWalletAction(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return walletCompletions(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		name, err := wallet.ParseName(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		actions := wallet.MustLookup(name).Actions()
		names := make([]string, 0, len(actions))
		for _, a := range actions {
			names = append(names, a.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

func walletCompletions() []string {
	profiles := wallet.All()
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name.String()+"\t"+p.DisplayName)
	}
	return names
}
