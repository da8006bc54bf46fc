// Package wallet holds the static table of supported wallet profiles.
//
// Profiles are keyed by Name and are read-only: callers must not mutate
// the maps or slices of a returned Profile.
package wallet

import (
	"strings"
)

// Name identifies a supported wallet.
type Name string

// Supported wallets.
const (
	Phantom     Name = "phantom"
	Solflare    Name = "solflare"
	Backpack    Name = "backpack"
	TrustWallet Name = "trustWallet"
)

// String returns the wallet name.
func (n Name) String() string {
	return string(n)
}

// Action is a deeplink action kind.
type Action string

// Supported actions.
const (
	ActionConnect         Action = "connect"
	ActionSignMessage     Action = "signMessage"
	ActionSignTransaction Action = "signTransaction"
	ActionDisconnect      Action = "disconnect"
	ActionBrowse          Action = "browse"
)

// String returns the action name.
func (a Action) String() string {
	return string(a)
}

// actionOrder is the display order for actions.
//
//nolint:gochecknoglobals // Static ordering table
var actionOrder = []Action{
	ActionConnect,
	ActionSignMessage,
	ActionSignTransaction,
	ActionDisconnect,
	ActionBrowse,
}

// Transport describes how a wallet is reached.
type Transport int

// Transport kinds.
const (
	// TransportUniversalLink opens an https universal link handled by the app.
	TransportUniversalLink Transport = iota
	// TransportWalletConnect wraps a WalletConnect URI in the app's custom scheme.
	TransportWalletConnect
)

// String returns the transport name.
func (t Transport) String() string {
	switch t {
	case TransportUniversalLink:
		return "universal-link"
	case TransportWalletConnect:
		return "walletconnect"
	default:
		return "unknown"
	}
}

// Profile is the static configuration for one wallet.
type Profile struct {
	// Name is the wallet identifier.
	Name Name
	// DisplayName is the human-facing wallet name.
	DisplayName string
	// Transport is how the wallet is reached.
	Transport Transport
	// DefaultAction is used when no action is requested.
	DefaultAction Action
	// Templates maps each supported action to its base URL.
	Templates map[Action]string
	// Fallback is the wallet website opened when the app does not take over.
	Fallback string
	// Callbacks maps actions to the redirect path appended to the app origin.
	// An empty path redirects to the bare origin.
	Callbacks map[Action]string
	// Markers are substrings identifying a return URL for this wallet.
	Markers []string
}

// Supports reports whether the wallet supports the action.
func (p *Profile) Supports(a Action) bool {
	_, ok := p.Templates[a]
	return ok
}

// Actions returns the supported actions in display order.
func (p *Profile) Actions() []Action {
	actions := make([]Action, 0, len(p.Templates))
	for _, a := range actionOrder {
		if p.Supports(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Template returns the base URL for an action.
func (p *Profile) Template(a Action) (string, bool) {
	t, ok := p.Templates[a]
	return t, ok
}

// CallbackPath returns the redirect path for an action.
func (p *Profile) CallbackPath(a Action) string {
	return p.Callbacks[a]
}

// RedirectLink joins the app origin with the callback path for an action.
func (p *Profile) RedirectLink(origin string, a Action) string {
	return strings.TrimSuffix(origin, "/") + p.CallbackPath(a)
}

// ActionForPath returns the action whose callback path appears in path.
func (p *Profile) ActionForPath(path string) (Action, bool) {
	for _, a := range actionOrder {
		cb := p.Callbacks[a]
		if cb != "" && strings.Contains(path, cb) {
			return a, true
		}
	}
	return "", false
}

// MatchesResponse reports whether a raw URL carries one of this wallet's markers.
func (p *Profile) MatchesResponse(rawURL string) bool {
	for _, m := range p.Markers {
		if strings.Contains(rawURL, m) {
			return true
		}
	}
	return false
}

// CallbackPaths returns every non-empty callback path of the profile.
func (p *Profile) CallbackPaths() []string {
	paths := make([]string, 0, len(p.Callbacks))
	for _, a := range actionOrder {
		if cb := p.Callbacks[a]; cb != "" {
			paths = append(paths, cb)
		}
	}
	return paths
}
