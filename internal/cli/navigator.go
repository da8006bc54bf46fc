package cli

import (
	"context"
	"io"

	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/output"
)

// terminalNavigator prints where the user is sent. Deeplinks are also
// drawn as QR codes so a phone can open them.
type terminalNavigator struct {
	w  io.Writer
	qr bool
}

func newTerminalNavigator(w io.Writer, qr bool) *terminalNavigator {
	return &terminalNavigator{w: w, qr: qr}
}

// Navigate prints the deeplink and its QR code.
func (n *terminalNavigator) Navigate(_ context.Context, url string) error {
	out(n.w, "Deeplink: %s\n", url)
	if n.qr {
		if err := output.RenderQR(n.w, url, output.DefaultQRConfig()); err != nil {
			outln(n.w, "(deeplink is too long for a QR code)")
		}
	}
	return nil
}

// OpenWebsite prints the website URL.
func (n *terminalNavigator) OpenWebsite(_ context.Context, url string) error {
	out(n.w, "Website: %s\n", url)
	return nil
}

// newNavigator returns the terminal navigator, teed to the system browser when launch is set.
func newNavigator(w io.Writer, qr, launch bool, opener dispatch.Opener) dispatch.Navigator {
	term := newTerminalNavigator(w, qr)
	if !launch {
		return term
	}
	return dispatch.Tee{term, dispatch.NewLaunchNavigator(opener)}
}
