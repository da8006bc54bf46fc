package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/wallet"
)

// walletsCmd lists supported wallets.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List supported wallets and actions",
	Long: `List every supported wallet, how it is reached, and the actions it supports.

Example:
  deeplink wallets
  deeplink wallets -o json`,
	Args: cobra.NoArgs,
	RunE: runWallets,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletsCmd)
}

// walletInfo describes one wallet profile.
type walletInfo struct {
	Name          wallet.Name     `json:"name"`
	DisplayName   string          `json:"display_name"`
	Transport     string          `json:"transport"`
	DefaultAction wallet.Action   `json:"default_action"`
	Actions       []wallet.Action `json:"actions"`
	Website       string          `json:"website"`
	Callbacks     []string        `json:"callbacks,omitempty"`
}

type walletList struct {
	Wallets []walletInfo `json:"wallets"`

	palette output.Palette
}

// RenderText prints the wallets as a table.
func (l walletList) RenderText(w io.Writer) error {
	table := output.NewTable("WALLET", "TRANSPORT", "DEFAULT", "ACTIONS", "WEBSITE")
	table.SetPalette(l.palette)
	for _, info := range l.Wallets {
		actions := make([]string, 0, len(info.Actions))
		for _, a := range info.Actions {
			actions = append(actions, a.String())
		}
		table.AddRow(
			info.Name.String(),
			info.Transport,
			info.DefaultAction.String(),
			strings.Join(actions, ", "),
			info.Website,
		)
	}
	return table.Render(w)
}

func listWallets() walletList {
	profiles := wallet.All()
	list := walletList{Wallets: make([]walletInfo, 0, len(profiles))}
	for _, p := range profiles {
		list.Wallets = append(list.Wallets, walletInfo{
			Name:          p.Name,
			DisplayName:   p.DisplayName,
			Transport:     p.Transport.String(),
			DefaultAction: p.DefaultAction,
			Actions:       p.Actions(),
			Website:       p.Fallback,
			Callbacks:     p.CallbackPaths(),
		})
	}
	return list
}

func runWallets(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	list := listWallets()
	list.palette = cc.Formatter.Palette()
	return cc.Formatter.To(cmd.OutOrStdout()).Print(list)
}
