package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/wallet"
)

// resetCmd resets connector states.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var resetCmd = &cobra.Command{
	Use:   "reset [wallet]",
	Short: "Forget wallet connection state",
	Long: `Reset one wallet, or all wallets, to disconnected with no public key
and no session. Resetting a disconnected wallet is a no-op.

Example:
  deeplink reset solflare
  deeplink reset`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeWallet,
	RunE:              runReset,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	states, err := cc.LoadRegistry()
	if err != nil {
		return err
	}

	msg := "Reset all wallets"
	if len(args) == 0 {
		states.ResetAll()
	} else {
		name, err := wallet.ParseName(args[0])
		if err != nil {
			return err
		}
		if _, err = states.Reset(name); err != nil {
			return err
		}
		msg = fmt.Sprintf("Reset %s", wallet.MustLookup(name).DisplayName)
	}

	if err = cc.SaveRegistry(states); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), msg, cc.Formatter.Format())
}
