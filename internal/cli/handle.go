package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/response"
)

// handleCmd interprets a URL a wallet app redirected back to.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var handleCmd = &cobra.Command{
	Use:   "handle <url>",
	Short: "Interpret a wallet response URL",
	Long: `Interpret the URL a wallet app redirected back to and update the stored
connection state.

A wallet-reported error (errorCode/errorMessage) leaves the state unchanged
and exits with an error. URLs that cannot be parsed are logged and ignored.

Example:
  deeplink handle 'http://localhost:8080/solflare-callback?public_key=...&session=...'
  deeplink handle 'http://localhost:8080/backpack-sign-callback?signature=...'
  deeplink handle 'trust://wc?uri=wc%3A...'`,
	Args: cobra.ExactArgs(1),
	RunE: runHandle,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(handleCmd)
}

// outcomeList renders response outcomes.
type outcomeList struct {
	Outcomes []response.Outcome `json:"outcomes"`

	palette output.Palette
}

// RenderText prints one line per outcome.
func (l outcomeList) RenderText(w io.Writer) error {
	if len(l.Outcomes) == 0 {
		outln(w, "No wallet response recognized.")
		return nil
	}
	for _, o := range l.Outcomes {
		msg := o.Message
		if o.Err() != nil {
			msg = l.palette.Red(msg)
		}
		outln(w, msg)
		if o.State != nil && o.State.Connected {
			out(w, "  public key: %s\n", valueOrNone(o.State.PublicKeyString()))
			out(w, "  session:    %s\n", valueOrNone(o.State.SessionString()))
		}
	}
	return nil
}

func runHandle(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	states, err := cc.LoadRegistry()
	if err != nil {
		return err
	}

	handler := response.NewHandler(states,
		response.WithLogger(cc.Logger.Named("response")),
		response.WithMetrics(cc.Metrics),
	)
	outcomes := handler.Handle(args[0])
	if outcomes == nil {
		outcomes = []response.Outcome{}
	}

	if len(outcomes) > 0 {
		if err = cc.SaveRegistry(states); err != nil {
			return err
		}
	}

	list := outcomeList{Outcomes: outcomes, palette: cc.Formatter.Palette()}
	if err = cc.Formatter.To(cmd.OutOrStdout()).Print(list); err != nil {
		return err
	}

	for _, o := range outcomes {
		if err := o.Err(); err != nil {
			return err
		}
	}
	return nil
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
