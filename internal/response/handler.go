package response

import (
	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/wallet"
)

// Resolver cancels pending dispatch attempts for a wallet that responded.
type Resolver interface {
	Resolve(name wallet.Name) int
}

// Notifier reports outcomes to the user.
type Notifier interface {
	Notify(o Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(o Outcome)

// Notify calls f.
func (f NotifierFunc) Notify(o Outcome) {
	f(o)
}

// Logger provides logging capabilities.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Handler applies wallet responses to connector state.
type Handler struct {
	states   *connector.Registry
	resolver Resolver
	notifier Notifier
	logger   Logger
	metrics  *metrics.Metrics
}

// Option configures a Handler.
type Option func(*Handler)

// WithResolver sets the resolver told about every responding wallet.
func WithResolver(r Resolver) Option {
	return func(h *Handler) {
		h.resolver = r
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a Handler that updates states.
func NewHandler(states *connector.Registry, opts ...Option) *Handler {
	h := &Handler{
		states:   states,
		notifier: NotifierFunc(func(Outcome) {}),
		logger:   nopLogger{},
		metrics:  metrics.Global,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle parses a return URL and applies every outcome. Malformed URLs
// are logged and yield no outcomes; they never surface as errors.
func (h *Handler) Handle(rawURL string) []Outcome {
	outcomes, err := Parse(rawURL)
	if err != nil {
		h.metrics.RecordMalformedResponse()
		h.logger.Error("ignoring malformed response url: %v", err)
		return nil
	}
	if len(outcomes) == 0 {
		h.logger.Debug("no wallet response in %s", rawURL)
		return nil
	}

	h.metrics.RecordResponse()
	for i := range outcomes {
		h.apply(&outcomes[i])
		if h.resolver != nil {
			if n := h.resolver.Resolve(outcomes[i].Wallet); n > 0 {
				h.logger.Debug("cancelled %d pending fallback(s) for %s", n, outcomes[i].Wallet)
			}
		}
		h.notifier.Notify(outcomes[i])
	}
	return outcomes
}

func (h *Handler) apply(o *Outcome) {
	var (
		state connector.State
		err   error
	)

	switch o.Kind {
	case KindFailure:
		h.metrics.RecordWalletError()
		h.logger.Error("%s reported error %s: %s", o.Wallet, o.ErrorCode, o.ErrorMessage)
		state, err = h.states.Get(o.Wallet)
	case KindSigned:
		h.metrics.RecordSignature()
		state, err = h.states.ApplySigned(o.Wallet, o.PublicKey)
	case KindConnected:
		h.metrics.RecordConnection()
		state, err = h.states.ApplyConnected(o.Wallet, o.PublicKey, o.Session)
	case KindDisconnected:
		h.metrics.RecordDisconnection()
		state, err = h.states.Reset(o.Wallet)
	case KindInitiated:
		h.metrics.RecordConnection()
		state, err = h.states.ApplyInitiated(o.Wallet, o.Session)
	}

	if err != nil {
		h.logger.Error("applying %s response for %s: %v", o.Kind, o.Wallet, err)
		return
	}
	h.logger.Debug("%s: %s", o.Wallet, o.Message)
	o.State = &state
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
