// Package connector tracks per-wallet connection state.
//
// A Registry holds one State per supported wallet. States move through
// Disconnected, Connecting and Connected:
//
//	Disconnected -> Connecting   dispatch of a connect action
//	Connecting   -> Connected    successful wallet response
//	Connected    -> Disconnected disconnect response or reset
//
// A wallet may remain Connecting indefinitely; nothing times it out.
package connector

import (
	"time"

	"github.com/mrz1836/deeplink/internal/wallet"
)

// Phase is the connection phase of a wallet.
type Phase string

// Connection phases.
const (
	PhaseDisconnected Phase = "disconnected"
	PhaseConnecting   Phase = "connecting"
	PhaseConnected    Phase = "connected"
)

// String returns the phase name.
func (p Phase) String() string {
	return string(p)
}

// State is the connection state of one wallet.
type State struct {
	Wallet    wallet.Name `json:"wallet"`
	Phase     Phase       `json:"phase"`
	Connected bool        `json:"is_connected"`
	// PublicKey is the wallet public key reported by the last response.
	PublicKey *string `json:"public_key"`
	// Session is the wallet session token, or the WalletConnect topic.
	Session *string `json:"session"`
	// DappKey is the placeholder dapp encryption key sent on the last connect.
	DappKey   string    `json:"dapp_key,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newState returns the default state for a wallet.
func newState(name wallet.Name) State {
	return State{Wallet: name, Phase: PhaseDisconnected}
}

// IsDefault reports whether the state holds no connection data.
func (s State) IsDefault() bool {
	return !s.Connected && s.Phase == PhaseDisconnected && s.PublicKey == nil && s.Session == nil && s.DappKey == ""
}

// PublicKeyString returns the public key or an empty string.
func (s State) PublicKeyString() string {
	if s.PublicKey == nil {
		return ""
	}
	return *s.PublicKey
}

// SessionString returns the session or an empty string.
func (s State) SessionString() string {
	if s.Session == nil {
		return ""
	}
	return *s.Session
}

// clone returns a copy that shares no pointers with s.
func (s State) clone() State {
	if s.PublicKey != nil {
		s.PublicKey = ptr(*s.PublicKey)
	}
	if s.Session != nil {
		s.Session = ptr(*s.Session)
	}
	return s
}

func ptr(s string) *string {
	return &s
}
