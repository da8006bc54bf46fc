package wallet

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// MaxTypoDistance is the maximum Levenshtein distance for a name suggestion.
const MaxTypoDistance = 3

// order is the display order of wallets.
//
//nolint:gochecknoglobals // Static ordering table
var order = []Name{Phantom, Solflare, Backpack, TrustWallet}

// profiles is the read-only wallet configuration table.
//
//nolint:gochecknoglobals // Static configuration table
var profiles = map[Name]*Profile{
	Phantom: {
		Name:          Phantom,
		DisplayName:   "Phantom",
		Transport:     TransportUniversalLink,
		DefaultAction: ActionBrowse,
		Templates: map[Action]string{
			ActionConnect:     "https://phantom.app/ul/connect",
			ActionSignMessage: "https://phantom.app/ul/signMessage",
			ActionBrowse:      "https://phantom.app/ul/browse",
		},
		Fallback: "https://phantom.app",
		Callbacks: map[Action]string{
			ActionConnect: "/phantom-callback",
		},
		Markers: []string{"phantom.app/ul/", "/phantom-callback"},
	},
	Solflare: {
		Name:          Solflare,
		DisplayName:   "Solflare",
		Transport:     TransportUniversalLink,
		DefaultAction: ActionConnect,
		Templates: map[Action]string{
			ActionConnect:         "https://solflare.com/ul/v1/connect",
			ActionSignMessage:     "https://solflare.com/ul/v1/signMessage",
			ActionSignTransaction: "https://solflare.com/ul/v1/signTransaction",
			ActionDisconnect:      "https://solflare.com/ul/v1/disconnect",
		},
		Fallback: "https://solflare.com",
		Callbacks: map[Action]string{
			ActionConnect:         "/solflare-callback",
			ActionSignMessage:     "/solflare-sign-callback",
			ActionSignTransaction: "/solflare-tx-callback",
			ActionDisconnect:      "/solflare-disconnect-callback",
		},
		Markers: []string{
			"solflare.com/ul/",
			"/solflare-callback",
			"/solflare-sign-callback",
			"/solflare-tx-callback",
			"/solflare-disconnect-callback",
		},
	},
	Backpack: {
		Name:          Backpack,
		DisplayName:   "Backpack",
		Transport:     TransportUniversalLink,
		DefaultAction: ActionBrowse,
		Templates: map[Action]string{
			ActionBrowse:          "https://backpack.app/ul/v1/browse",
			ActionConnect:         "https://backpack.app/ul/v1/connect",
			ActionSignMessage:     "https://backpack.app/ul/v1/signMessage",
			ActionSignTransaction: "https://backpack.app/ul/v1/signTransaction",
			ActionDisconnect:      "https://backpack.app/ul/v1/disconnect",
		},
		Fallback: "https://backpack.app",
		Callbacks: map[Action]string{
			ActionConnect:         "/backpack-callback",
			ActionSignMessage:     "/backpack-sign-callback",
			ActionSignTransaction: "/backpack-tx-callback",
			ActionDisconnect:      "/backpack-disconnect-callback",
		},
		Markers: []string{
			"backpack.app/ul/",
			"/backpack-callback",
			"/backpack-sign-callback",
			"/backpack-tx-callback",
			"/backpack-disconnect-callback",
		},
	},
	TrustWallet: {
		Name:          TrustWallet,
		DisplayName:   "Trust Wallet",
		Transport:     TransportWalletConnect,
		DefaultAction: ActionConnect,
		Templates: map[Action]string{
			ActionConnect:     "trust://wc",
			ActionSignMessage: "trust://wc",
		},
		Fallback:  "https://trustwallet.com",
		Callbacks: map[Action]string{},
		Markers:   []string{"trust://wc"},
	},
}

// Lookup returns the profile for a wallet.
func Lookup(name Name) (*Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// MustLookup returns the profile for a known wallet and panics otherwise.
// It is intended for the package constants only.
func MustLookup(name Name) *Profile {
	p, ok := profiles[name]
	if !ok {
		panic(fmt.Sprintf("wallet: unknown profile %q", name))
	}
	return p
}

// All returns every profile in display order.
func All() []*Profile {
	all := make([]*Profile, 0, len(order))
	for _, n := range order {
		all = append(all, profiles[n])
	}
	return all
}

// Names returns every wallet name in display order.
func Names() []Name {
	names := make([]Name, len(order))
	copy(names, order)
	return names
}

// ParseName resolves a user-supplied wallet name.
// Matching is case-insensitive and ignores dashes, underscores, and spaces,
// so "trust-wallet" resolves to TrustWallet. "trust" is accepted as an alias.
func ParseName(s string) (Name, error) {
	key := normalize(s)
	if key == "trust" {
		return TrustWallet, nil
	}
	for _, n := range order {
		if normalize(string(n)) == key {
			return n, nil
		}
	}

	err := dlerr.WithDetails(dlerr.ErrWalletNotFound, map[string]string{"wallet": s})
	if suggestion := SuggestName(s); suggestion != "" {
		return "", dlerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", suggestion))
	}
	return "", dlerr.WithSuggestion(err, "run 'deeplink wallets' to list supported wallets")
}

// ParseAction resolves a user-supplied action name.
func ParseAction(s string) (Action, error) {
	key := normalize(s)
	for _, a := range actionOrder {
		if normalize(string(a)) == key {
			return a, nil
		}
	}
	// Short aliases
	switch key {
	case "sign", "signmsg":
		return ActionSignMessage, nil
	case "signtx", "tx":
		return ActionSignTransaction, nil
	}
	return "", dlerr.WithDetails(dlerr.ErrInvalidInput, map[string]string{"action": s})
}

// SuggestName returns the closest wallet name to the input, or empty if
// none is within MaxTypoDistance.
func SuggestName(input string) string {
	key := normalize(input)
	if key == "" {
		return ""
	}

	minDist := math.MaxInt
	var suggestion Name
	for _, n := range order {
		dist := levenshtein.ComputeDistance(key, normalize(string(n)))
		if dist < minDist {
			minDist = dist
			suggestion = n
		}
	}

	if minDist <= MaxTypoDistance {
		return string(suggestion)
	}
	return ""
}

// Match returns every profile whose markers appear in the raw URL.
func Match(rawURL string) []*Profile {
	var matched []*Profile
	for _, n := range order {
		if p := profiles[n]; p.MatchesResponse(rawURL) {
			matched = append(matched, p)
		}
	}
	return matched
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
