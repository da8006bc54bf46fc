package connector

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// Registry holds the connector state of every supported wallet.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	states map[wallet.Name]*State
	clock  clock.Clock
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the clock used for UpdatedAt timestamps.
func WithClock(c clock.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

// NewRegistry creates a registry with every wallet disconnected.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		states: make(map[wallet.Name]*State, len(wallet.Names())),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, name := range wallet.Names() {
		s := newState(name)
		r.states[name] = &s
	}
	return r
}

// Get returns a copy of a wallet's state.
func (r *Registry) Get(name wallet.Name) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[name]
	if !ok {
		return State{}, unknownWallet(name)
	}
	return s.clone(), nil
}

// Snapshot returns copies of all states in wallet display order.
func (r *Registry) Snapshot() []State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]State, 0, len(r.states))
	for _, name := range wallet.Names() {
		out = append(out, r.states[name].clone())
	}
	return out
}

// BeginConnect records a connect dispatch and the dapp key it carried.
// A disconnected wallet moves to Connecting; a connected one stays connected.
func (r *Registry) BeginConnect(name wallet.Name, dappKey string) (State, error) {
	return r.update(name, func(s *State) {
		if s.Phase != PhaseConnected {
			s.Phase = PhaseConnecting
		}
		if dappKey != "" {
			s.DappKey = dappKey
		}
	})
}

// SetDappKey stores the dapp key used by a non-connect action.
func (r *Registry) SetDappKey(name wallet.Name, dappKey string) (State, error) {
	return r.update(name, func(s *State) {
		s.DappKey = dappKey
	})
}

// ApplyConnected records a completed connection.
// The session is replaced only when one is supplied.
func (r *Registry) ApplyConnected(name wallet.Name, publicKey, session string) (State, error) {
	return r.update(name, func(s *State) {
		s.Phase = PhaseConnected
		s.Connected = true
		s.PublicKey = ptr(publicKey)
		if session != "" {
			s.Session = ptr(session)
		}
	})
}

// ApplySigned records a completed signature.
// The public key is replaced only when one is supplied.
func (r *Registry) ApplySigned(name wallet.Name, publicKey string) (State, error) {
	return r.update(name, func(s *State) {
		s.Phase = PhaseConnected
		s.Connected = true
		if publicKey != "" {
			s.PublicKey = ptr(publicKey)
		}
	})
}

// ApplyInitiated records a WalletConnect session handed to the wallet app.
func (r *Registry) ApplyInitiated(name wallet.Name, session string) (State, error) {
	return r.update(name, func(s *State) {
		s.Phase = PhaseConnected
		s.Connected = true
		if session != "" {
			s.Session = ptr(session)
		}
	})
}

// Reset returns a wallet to its default state. Resetting twice is a no-op.
func (r *Registry) Reset(name wallet.Name) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[name]
	if !ok {
		return State{}, unknownWallet(name)
	}
	if s.IsDefault() {
		return s.clone(), nil
	}
	*s = newState(name)
	s.UpdatedAt = r.clock.Now()
	return s.clone(), nil
}

// ResetAll returns every wallet to its default state.
func (r *Registry) ResetAll() {
	for _, name := range wallet.Names() {
		_, _ = r.Reset(name)
	}
}

// Restore replaces states with previously saved ones.
// Entries for unknown wallets are ignored.
func (r *Registry) Restore(states []State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, saved := range states {
		s, ok := r.states[saved.Wallet]
		if !ok {
			continue
		}
		restored := saved.clone()
		if restored.Phase == "" {
			restored.Phase = PhaseDisconnected
		}
		*s = restored
	}
}

func (r *Registry) update(name wallet.Name, fn func(*State)) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[name]
	if !ok {
		return State{}, unknownWallet(name)
	}
	fn(s)
	s.UpdatedAt = r.clock.Now()
	return s.clone(), nil
}

func unknownWallet(name wallet.Name) error {
	return dlerr.WithDetails(dlerr.ErrWalletNotFound, map[string]string{"wallet": name.String()})
}
