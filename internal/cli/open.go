package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/platform"
	"github.com/mrz1836/deeplink/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	openUserAgent   string
	openMobile      bool
	openLaunch      bool
	openTransaction string
	openTarget      string
	openStructured  bool
	openNoWait      bool
	openQR          bool

	// browserOpener launches URLs for --launch. Replaced in tests.
	browserOpener dispatch.Opener = platform.NewLauncher()
)

// openCmd dispatches a wallet action.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var openCmd = &cobra.Command{
	Use:   "open <wallet> [action]",
	Short: "Open a wallet through its deeplink",
	Long: `Open a wallet app for an action, or its website on desktop.

With a mobile user agent the deeplink is printed (and drawn as a QR code on
a terminal), then the wallet website is opened after two seconds unless
--no-wait is given. Without one, the website is opened right away.

Actions: connect, signMessage, signTransaction, disconnect, browse.
The wallet's default action is used when none is given.

Example:
  deeplink open solflare connect --mobile
  deeplink open phantom browse --mobile --target https://dapp.example
  deeplink open backpack signTransaction --mobile --transaction <base58>
  deeplink open trust signMessage --mobile --structured --launch`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeWalletAction,
	RunE:              runOpen,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().StringVar(&openUserAgent, "user-agent", "", "user agent deciding mobile or desktop handling")
	openCmd.Flags().BoolVar(&openMobile, "mobile", false, "behave as a mobile browser")
	openCmd.Flags().BoolVar(&openLaunch, "launch", false, "open links with the system browser")
	openCmd.Flags().StringVar(&openTransaction, "transaction", "", "serialized transaction for signTransaction")
	openCmd.Flags().StringVar(&openTarget, "target", "", "page to open with browse (default: app origin)")
	openCmd.Flags().BoolVar(&openStructured, "structured", false, "send a JSON-RPC signing request to Trust Wallet")
	openCmd.Flags().BoolVar(&openNoWait, "no-wait", false, "return without waiting for the website fallback")
	openCmd.Flags().BoolVar(&openQR, "qr", true, "draw deeplinks as QR codes on a terminal")
}

// userAgent resolves the user agent from flags.
func userAgent() string {
	switch {
	case openUserAgent != "":
		return openUserAgent
	case openMobile:
		return platform.UserAgentIPhone
	default:
		return platform.UserAgentDesktop
	}
}

func runOpen(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	name, err := wallet.ParseName(args[0])
	if err != nil {
		return err
	}
	var action wallet.Action
	if len(args) > 1 {
		if action, err = wallet.ParseAction(args[1]); err != nil {
			return err
		}
	}

	params := cc.Params()
	if openTransaction != "" {
		params.Transaction = openTransaction
	}
	if openTarget != "" {
		params.Target = openTarget
	}
	if openStructured {
		params.Structured = true
	}

	// Keep JSON output clean by sending navigation notices to stderr.
	w := cmd.OutOrStdout()
	var notices io.Writer = w
	if cc.Formatter.IsJSON() {
		notices = cmd.ErrOrStderr()
	}
	launch := openLaunch || cc.Config.GetDispatch().LaunchBrowser
	nav := newNavigator(notices, openQR && cc.Config.Output.QR, launch, browserOpener)

	states, err := cc.LoadRegistry()
	if err != nil {
		return err
	}
	d := cc.NewDispatcher(nav, states)
	defer d.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := d.Dispatch(ctx, dispatch.Request{
		Wallet:    name,
		Action:    action,
		UserAgent: userAgent(),
		Params:    params,
	})
	if err != nil {
		return err
	}
	if err = cc.SaveRegistry(states); err != nil {
		cc.Logger.Error("saving connector state: %v", err)
	}

	if cc.Formatter.IsJSON() {
		if err = cc.Formatter.To(w).Print(res); err != nil {
			return err
		}
	} else {
		displayOpenText(w, res)
	}

	if res.Attempt == nil || openNoWait {
		return nil
	}
	if err = res.Attempt.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if res.Attempt.Fired() {
		cc.Logger.Debug("no response from %s, website opened", res.Wallet)
	}
	return nil
}

func displayOpenText(w io.Writer, res *dispatch.Result) {
	profile := wallet.MustLookup(res.Wallet)
	if res.Link == nil || res.OpenedWebsite {
		out(w, "Opened the %s website.\n", profile.DisplayName)
		return
	}
	out(w, "Sent %s to %s. Falling back to %s in %s.\n",
		res.Action, profile.DisplayName, res.Website, dispatch.FallbackDelay)
}
