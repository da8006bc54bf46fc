// Package response interprets URLs that wallet apps redirect back to.
package response

import (
	"fmt"
	"net/url"

	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/deeplink"
	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// Kind classifies a wallet response.
type Kind string

// Response kinds.
const (
	// KindFailure is a wallet-reported error. State is left unchanged.
	KindFailure Kind = "failure"
	// KindSigned is a completed message or transaction signature.
	KindSigned Kind = "signed"
	// KindConnected is a completed connection carrying a public key.
	KindConnected Kind = "connected"
	// KindDisconnected is a disconnect callback.
	KindDisconnected Kind = "disconnected"
	// KindInitiated is a WalletConnect session handed to the wallet app.
	KindInitiated Kind = "initiated"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Outcome is what one wallet's response means.
type Outcome struct {
	Wallet wallet.Name `json:"wallet"`
	Kind   Kind        `json:"kind"`
	// Action is the action implied by the callback path, if known.
	Action       wallet.Action `json:"action,omitempty"`
	PublicKey    string        `json:"public_key,omitempty"`
	Session      string        `json:"session,omitempty"`
	Signature    string        `json:"signature,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	// Message is a human-readable summary.
	Message string `json:"message"`
	// State is the connector state after the outcome was applied.
	State *connector.State `json:"state,omitempty"`
}

// Err returns the wallet-reported error of a failure outcome.
func (o Outcome) Err() error {
	if o.Kind != KindFailure {
		return nil
	}
	return dlerr.WithDetails(dlerr.ErrWalletRejected, map[string]string{
		"wallet":  o.Wallet.String(),
		"code":    o.ErrorCode,
		"message": o.ErrorMessage,
	})
}

// Parse classifies a return URL. Each wallet whose markers appear in the
// URL yields at most one outcome, checked in order: errorCode, signature,
// disconnect callback path, public_key, then the WalletConnect scheme.
// Parameters only count when they carry a value. Query pairs that fail to
// decode are dropped; only a URL that cannot be parsed at all is malformed.
// A URL with no recognized marker yields no outcomes.
func Parse(rawURL string) ([]Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, dlerr.WithCause(dlerr.ErrMalformedResponse, err)
	}
	query := u.Query()

	var outcomes []Outcome
	for _, p := range wallet.Match(rawURL) {
		if o, ok := classify(p, u, query); ok {
			outcomes = append(outcomes, o)
		}
	}
	return outcomes, nil
}

func classify(p *wallet.Profile, u *url.URL, q url.Values) (Outcome, bool) {
	o := Outcome{Wallet: p.Name}
	if a, ok := p.ActionForPath(u.Path); ok {
		o.Action = a
	}

	switch {
	case q.Get(deeplink.ParamErrorCode) != "":
		o.Kind = KindFailure
		o.ErrorCode = q.Get(deeplink.ParamErrorCode)
		o.ErrorMessage = q.Get(deeplink.ParamErrorMessage)
		o.Message = fmt.Sprintf("%s error %s: %s", p.DisplayName, o.ErrorCode, o.ErrorMessage)

	case q.Get(deeplink.ParamSignature) != "":
		o.Kind = KindSigned
		o.Signature = q.Get(deeplink.ParamSignature)
		o.PublicKey = q.Get(deeplink.ParamPublicKey)
		o.Message = fmt.Sprintf("%s returned a signature", p.DisplayName)

	case o.Action == wallet.ActionDisconnect:
		o.Kind = KindDisconnected
		o.Message = fmt.Sprintf("Disconnected from %s", p.DisplayName)

	case q.Get(deeplink.ParamPublicKey) != "":
		o.Kind = KindConnected
		o.PublicKey = q.Get(deeplink.ParamPublicKey)
		o.Session = q.Get(deeplink.ParamSession)
		o.Message = fmt.Sprintf("Connected to %s", p.DisplayName)

	case p.Transport == wallet.TransportWalletConnect:
		o.Kind = KindInitiated
		if wc, err := deeplink.ParseWalletConnectURI(q.Get(deeplink.ParamURI)); err == nil {
			o.Session = wc.Topic
		}
		if q.Get(deeplink.ParamAction) == wallet.ActionSignMessage.String() {
			o.Action = wallet.ActionSignMessage
			o.Message = fmt.Sprintf("%s opened for signing", p.DisplayName)
		} else {
			o.Action = wallet.ActionConnect
			o.Message = fmt.Sprintf("%s session initiated", p.DisplayName)
		}

	default:
		return Outcome{}, false
	}
	return o, true
}
