package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/wallet"
)

// statusCmd shows connector states.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status [wallet]",
	Short: "Show wallet connection state",
	Long: `Show the stored connection state of every wallet, or of one wallet.

Example:
  deeplink status
  deeplink status solflare -o json`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeWallet,
	RunE:              runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}

// stateList renders connector states.
type stateList struct {
	Wallets []connector.State `json:"wallets"`

	palette output.Palette
}

// RenderText prints the states as a table.
func (l stateList) RenderText(w io.Writer) error {
	table := output.NewTable("WALLET", "PHASE", "CONNECTED", "PUBLIC KEY", "SESSION")
	table.SetPalette(l.palette)
	for _, s := range l.Wallets {
		table.AddRow(
			s.Wallet.String(),
			s.Phase.String(),
			strconv.FormatBool(s.Connected),
			valueOrNone(s.PublicKeyString()),
			valueOrNone(s.SessionString()),
		)
	}
	return table.Render(w)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	states, err := cc.LoadRegistry()
	if err != nil {
		return err
	}

	list := stateList{palette: cc.Formatter.Palette()}
	if len(args) == 0 {
		list.Wallets = states.Snapshot()
	} else {
		name, err := wallet.ParseName(args[0])
		if err != nil {
			return err
		}
		state, err := states.Get(name)
		if err != nil {
			return err
		}
		list.Wallets = []connector.State{state}
	}

	return cc.Formatter.To(cmd.OutOrStdout()).Print(list)
}
