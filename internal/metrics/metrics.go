// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"sync/atomic"
)

// Metrics holds dispatch and response counters using atomic counters for thread safety.
type Metrics struct {
	// Dispatch metrics
	dispatchesTotal     atomic.Int64
	dispatchErrors      atomic.Int64
	websiteOpens        atomic.Int64
	deeplinkNavigations atomic.Int64
	inFlightRejections  atomic.Int64

	// Fallback metrics
	fallbacksFired     atomic.Int64
	fallbacksCancelled atomic.Int64

	// Response metrics
	responsesParsed    atomic.Int64
	malformedResponses atomic.Int64
	walletErrors       atomic.Int64
	connections        atomic.Int64
	disconnections     atomic.Int64
	signatures         atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordDispatch records a dispatch call and whether it failed.
func (m *Metrics) RecordDispatch(err error) {
	m.dispatchesTotal.Add(1)
	if err != nil {
		m.dispatchErrors.Add(1)
	}
}

// RecordWebsiteOpen records a direct website open (desktop or navigation failure).
func (m *Metrics) RecordWebsiteOpen() {
	m.websiteOpens.Add(1)
}

// RecordNavigation records a deeplink navigation.
func (m *Metrics) RecordNavigation() {
	m.deeplinkNavigations.Add(1)
}

// RecordInFlightRejection records a dispatch rejected by the in-flight guard.
func (m *Metrics) RecordInFlightRejection() {
	m.inFlightRejections.Add(1)
}

// RecordFallbackFired records a fallback timer that navigated to the website.
func (m *Metrics) RecordFallbackFired() {
	m.fallbacksFired.Add(1)
}

// RecordFallbackCancelled records a fallback cancelled before it fired.
func (m *Metrics) RecordFallbackCancelled() {
	m.fallbacksCancelled.Add(1)
}

// RecordResponse records a parsed return URL.
func (m *Metrics) RecordResponse() {
	m.responsesParsed.Add(1)
}

// RecordMalformedResponse records a return URL that could not be parsed.
func (m *Metrics) RecordMalformedResponse() {
	m.malformedResponses.Add(1)
}

// RecordWalletError records an errorCode reported by a wallet.
func (m *Metrics) RecordWalletError() {
	m.walletErrors.Add(1)
}

// RecordConnection records a completed connection.
func (m *Metrics) RecordConnection() {
	m.connections.Add(1)
}

// RecordDisconnection records a disconnect response.
func (m *Metrics) RecordDisconnection() {
	m.disconnections.Add(1)
}

// RecordSignature records a completed signing response.
func (m *Metrics) RecordSignature() {
	m.signatures.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	DispatchesTotal     int64 `json:"dispatches_total"`
	DispatchErrors      int64 `json:"dispatch_errors"`
	WebsiteOpens        int64 `json:"website_opens"`
	DeeplinkNavigations int64 `json:"deeplink_navigations"`
	InFlightRejections  int64 `json:"in_flight_rejections"`
	FallbacksFired      int64 `json:"fallbacks_fired"`
	FallbacksCancelled  int64 `json:"fallbacks_cancelled"`
	ResponsesParsed     int64 `json:"responses_parsed"`
	MalformedResponses  int64 `json:"malformed_responses"`
	WalletErrors        int64 `json:"wallet_errors"`
	Connections         int64 `json:"connections"`
	Disconnections      int64 `json:"disconnections"`
	Signatures          int64 `json:"signatures"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		DispatchesTotal:     m.dispatchesTotal.Load(),
		DispatchErrors:      m.dispatchErrors.Load(),
		WebsiteOpens:        m.websiteOpens.Load(),
		DeeplinkNavigations: m.deeplinkNavigations.Load(),
		InFlightRejections:  m.inFlightRejections.Load(),
		FallbacksFired:      m.fallbacksFired.Load(),
		FallbacksCancelled:  m.fallbacksCancelled.Load(),
		ResponsesParsed:     m.responsesParsed.Load(),
		MalformedResponses:  m.malformedResponses.Load(),
		WalletErrors:        m.walletErrors.Load(),
		Connections:         m.connections.Load(),
		Disconnections:      m.disconnections.Load(),
		Signatures:          m.signatures.Load(),
	}
}

// FallbackRate returns the share of deeplink navigations whose fallback
// fired, as a percentage (0-100).
// Returns 0 if no navigations have happened.
func (m *Metrics) FallbackRate() float64 {
	navs := m.deeplinkNavigations.Load()
	if navs == 0 {
		return 0
	}
	return float64(m.fallbacksFired.Load()) / float64(navs) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.dispatchesTotal.Store(0)
	m.dispatchErrors.Store(0)
	m.websiteOpens.Store(0)
	m.deeplinkNavigations.Store(0)
	m.inFlightRejections.Store(0)
	m.fallbacksFired.Store(0)
	m.fallbacksCancelled.Store(0)
	m.responsesParsed.Store(0)
	m.malformedResponses.Store(0)
	m.walletErrors.Store(0)
	m.connections.Store(0)
	m.disconnections.Store(0)
	m.signatures.Store(0)
}
