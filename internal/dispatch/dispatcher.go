// Package dispatch opens wallet deeplinks and falls back to the wallet
// website when the app does not take over.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/deeplink"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/platform"
	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// FallbackDelay is how long a mobile dispatch waits for the wallet app
// before opening the wallet website.
const FallbackDelay = 2000 * time.Millisecond

// ErrClosed is returned by Dispatch after Close.
//
//nolint:gochecknoglobals // Sentinel error
var ErrClosed = dlerr.New("DISPATCHER_CLOSED", "dispatcher is closed")

// Navigator moves the user to a URL.
type Navigator interface {
	// Navigate sends the current page to a deeplink.
	Navigate(ctx context.Context, url string) error
	// OpenWebsite opens a wallet website.
	OpenWebsite(ctx context.Context, url string) error
}

// Logger provides logging capabilities.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Request describes one dispatch.
type Request struct {
	Wallet wallet.Name
	// Action defaults to the wallet's default action.
	Action wallet.Action
	// UserAgent selects mobile or desktop handling.
	UserAgent string
	Params    deeplink.Params
	// Navigator overrides the dispatcher's navigator for this request.
	Navigator Navigator
}

// Result describes what a dispatch did.
type Result struct {
	Wallet wallet.Name   `json:"wallet"`
	Action wallet.Action `json:"action"`
	Mobile bool          `json:"mobile"`
	// Link is the constructed deeplink; nil on desktop.
	Link *deeplink.Link `json:"link,omitempty"`
	// Website is the wallet website opened or scheduled as fallback.
	Website string `json:"website"`
	// OpenedWebsite is set when the website was opened directly.
	OpenedWebsite bool `json:"opened_website"`
	// Attempt is the pending fallback; nil when the website was opened directly.
	Attempt *Attempt `json:"-"`
}

// Dispatcher sends users to wallet apps.
// It is safe for concurrent use.
type Dispatcher struct {
	builder   *deeplink.Builder
	navigator Navigator
	states    *connector.Registry
	clock     clock.Clock
	logger    Logger
	metrics   *metrics.Metrics

	singleFlight     bool
	cancelOnResponse bool

	mu      sync.Mutex
	pending map[wallet.Name][]*Attempt
	closed  bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used to schedule fallbacks.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithSingleFlight enables or disables the per-wallet in-flight guard.
func WithSingleFlight(enabled bool) Option {
	return func(d *Dispatcher) {
		d.singleFlight = enabled
	}
}

// WithCancelOnResponse controls whether Resolve cancels pending fallbacks.
func WithCancelOnResponse(enabled bool) Option {
	return func(d *Dispatcher) {
		d.cancelOnResponse = enabled
	}
}

// New creates a Dispatcher. The in-flight guard and cancel-on-response
// are enabled by default.
func New(builder *deeplink.Builder, navigator Navigator, states *connector.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		builder:          builder,
		navigator:        navigator,
		states:           states,
		clock:            clock.New(),
		logger:           nopLogger{},
		metrics:          metrics.Global,
		singleFlight:     true,
		cancelOnResponse: true,
		pending:          make(map[wallet.Name][]*Attempt),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the user to a wallet.
//
// Desktop user agents get the wallet website and no deeplink. Mobile
// user agents are navigated to the deeplink and the website is opened
// after FallbackDelay unless the attempt is cancelled first.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (res *Result, err error) {
	defer func() { d.metrics.RecordDispatch(err) }()

	profile, ok := wallet.Lookup(req.Wallet)
	if !ok {
		return nil, dlerr.WithDetails(dlerr.ErrWalletNotFound, map[string]string{"wallet": req.Wallet.String()})
	}
	action := req.Action
	if action == "" {
		action = profile.DefaultAction
	}
	if !profile.Supports(action) {
		return nil, dlerr.WithDetails(dlerr.ErrUnsupportedAction, map[string]string{
			"wallet": profile.Name.String(),
			"action": action.String(),
		})
	}

	nav := req.Navigator
	if nav == nil {
		nav = d.navigator
	}

	res = &Result{Wallet: profile.Name, Action: action, Website: profile.Fallback}
	if !platform.IsMobile(req.UserAgent) {
		d.logger.Debug("dispatch %s/%s: desktop user agent, opening %s", profile.Name, action, profile.Fallback)
		if err = d.openWebsite(ctx, nav, profile.Fallback); err != nil {
			return nil, err
		}
		res.OpenedWebsite = true
		return res, nil
	}
	res.Mobile = true

	link, attempt, err := d.reserve(profile, action, d.withStoredState(profile.Name, action, req.Params))
	if err != nil {
		return nil, err
	}
	res.Link = link

	d.logger.Debug("dispatch %s/%s: navigating to %s", profile.Name, action, link.URL)
	if navErr := nav.Navigate(ctx, link.URL); navErr != nil {
		d.release(attempt)
		attempt.abandon()
		d.logger.Error("dispatch %s/%s: navigation failed, opening website: %v", profile.Name, action, navErr)
		if err = d.openWebsite(ctx, nav, profile.Fallback); err != nil {
			return nil, err
		}
		res.OpenedWebsite = true
		return res, nil
	}
	d.metrics.RecordNavigation()
	d.recordLink(profile.Name, action, link)

	fallbackCtx := context.WithoutCancel(ctx)
	attempt.schedule(d.clock, FallbackDelay, func() {
		if !attempt.transition(attemptFired) {
			return
		}
		d.logger.Debug("dispatch %s/%s: fallback to %s", attempt.Wallet, attempt.Action, attempt.Fallback)
		attempt.finish(attemptFired, nav.OpenWebsite(fallbackCtx, attempt.Fallback))
	})
	res.Attempt = attempt
	return res, nil
}

// reserve builds the link and registers a pending attempt, enforcing
// the in-flight guard under the same lock.
func (d *Dispatcher) reserve(p *wallet.Profile, action wallet.Action, params deeplink.Params) (*deeplink.Link, *Attempt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, nil, ErrClosed
	}
	if d.singleFlight && len(d.pending[p.Name]) > 0 {
		d.metrics.RecordInFlightRejection()
		return nil, nil, dlerr.WithDetails(dlerr.ErrDispatchInFlight, map[string]string{"wallet": p.Name.String()})
	}

	link, err := d.builder.Build(p, action, params)
	if err != nil {
		return nil, nil, err
	}

	attempt := newAttempt(p.Name, action, link.URL, link.Fallback, d.attemptDone)
	d.pending[p.Name] = append(d.pending[p.Name], attempt)
	return link, attempt, nil
}

// withStoredState fills the session and dapp key from connector state.
// Connect always gets a fresh dapp key.
func (d *Dispatcher) withStoredState(name wallet.Name, action wallet.Action, params deeplink.Params) deeplink.Params {
	if d.states == nil {
		return params
	}
	state, err := d.states.Get(name)
	if err != nil {
		return params
	}
	if params.Session == "" {
		params.Session = state.SessionString()
	}
	if action != wallet.ActionConnect && params.DappKey == "" {
		params.DappKey = state.DappKey
	}
	return params
}

// recordLink updates connector state after a successful navigation.
func (d *Dispatcher) recordLink(name wallet.Name, action wallet.Action, link *deeplink.Link) {
	if d.states == nil {
		return
	}
	var err error
	switch {
	case action == wallet.ActionConnect:
		_, err = d.states.BeginConnect(name, link.DappKey)
	case link.DappKey != "":
		_, err = d.states.SetDappKey(name, link.DappKey)
	}
	if err != nil {
		d.logger.Error("dispatch %s/%s: updating state: %v", name, action, err)
	}
}

func (d *Dispatcher) openWebsite(ctx context.Context, nav Navigator, url string) error {
	if err := nav.OpenWebsite(ctx, url); err != nil {
		d.logger.Error("opening %s: %v", url, err)
		return dlerr.WithCause(dlerr.ErrNavigationFailed, err)
	}
	d.metrics.RecordWebsiteOpen()
	return nil
}

// attemptDone runs once per attempt when it fires or is cancelled.
func (d *Dispatcher) attemptDone(a *Attempt, state attemptState) {
	d.release(a)
	switch state {
	case attemptFired:
		d.metrics.RecordFallbackFired()
	case attemptCancelled:
		d.metrics.RecordFallbackCancelled()
	case attemptPending:
	}
}

func (d *Dispatcher) release(a *Attempt) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.pending[a.Wallet]
	for i, p := range list {
		if p == a {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(d.pending, a.Wallet)
		return
	}
	d.pending[a.Wallet] = list
}

// Resolve cancels every pending attempt for a wallet because the wallet
// responded. It returns the number of cancelled attempts and is a no-op
// when cancel-on-response is disabled.
func (d *Dispatcher) Resolve(name wallet.Name) int {
	if !d.cancelOnResponse {
		return 0
	}
	return d.cancel(name)
}

// Cancel cancels every pending attempt for a wallet.
func (d *Dispatcher) Cancel(name wallet.Name) int {
	return d.cancel(name)
}

func (d *Dispatcher) cancel(name wallet.Name) int {
	d.mu.Lock()
	attempts := append([]*Attempt(nil), d.pending[name]...)
	d.mu.Unlock()

	n := 0
	for _, a := range attempts {
		if a.Cancel() {
			d.logger.Debug("dispatch %s/%s: fallback cancelled", a.Wallet, a.Action)
			n++
		}
	}
	return n
}

// Pending returns the number of pending attempts for a wallet.
func (d *Dispatcher) Pending(name wallet.Name) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending[name])
}

// Close cancels all pending attempts and rejects further dispatches.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	names := make([]wallet.Name, 0, len(d.pending))
	for name := range d.pending {
		names = append(names, name)
	}
	d.mu.Unlock()

	for _, name := range names {
		d.cancel(name)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
