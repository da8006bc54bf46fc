package response

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/wallet"
)

type countingResolver struct {
	calls []wallet.Name
}

func (r *countingResolver) Resolve(name wallet.Name) int {
	r.calls = append(r.calls, name)
	return 1
}

type handlerFixture struct {
	h        *Handler
	states   *connector.Registry
	resolver *countingResolver
	notified []Outcome
	metrics  *metrics.Metrics
	log      *bytes.Buffer
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		states:   connector.NewRegistry(),
		resolver: &countingResolver{},
		metrics:  &metrics.Metrics{},
		log:      &bytes.Buffer{},
	}
	f.h = NewHandler(f.states,
		WithResolver(f.resolver),
		WithNotifier(NotifierFunc(func(o Outcome) { f.notified = append(f.notified, o) })),
		WithLogger(config.NewWriterLogger(config.LogLevelDebug, f.log)),
		WithMetrics(f.metrics),
	)
	return f
}

func TestHandle_SignatureMarksConnected(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	outcomes := f.h.Handle("https://dapp.example/solflare-sign-callback?signature=abc123")
	require.Len(t, outcomes, 1)

	state, err := f.states.Get(wallet.Solflare)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Nil(t, state.PublicKey, "public key untouched without public_key")
	require.NotNil(t, outcomes[0].State)
	assert.True(t, outcomes[0].State.Connected)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Signatures)
}

func TestHandle_WalletErrorLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	_, err := f.states.ApplyConnected(wallet.Solflare, "PK", "S")
	require.NoError(t, err)
	before, err := f.states.Get(wallet.Solflare)
	require.NoError(t, err)

	outcomes := f.h.Handle("https://dapp.example/solflare-sign-callback?errorCode=4001&errorMessage=UserRejected")
	require.Len(t, outcomes, 1)
	assert.Equal(t, KindFailure, outcomes[0].Kind)

	after, err := f.states.Get(wallet.Solflare)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.Len(t, f.notified, 1)
	assert.Equal(t, "UserRejected", f.notified[0].ErrorMessage)
	assert.Contains(t, f.log.String(), "[ERROR] solflare reported error 4001: UserRejected")
	assert.Equal(t, int64(1), f.metrics.Snapshot().WalletErrors)
}

func TestHandle_ConnectThenDisconnectTwice(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	f.h.Handle("https://dapp.example/backpack-callback?public_key=PK&session=S")
	state, err := f.states.Get(wallet.Backpack)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Equal(t, "PK", state.PublicKeyString())
	assert.Equal(t, "S", state.SessionString())

	for range 2 {
		outcomes := f.h.Handle("https://dapp.example/backpack-disconnect-callback")
		require.Len(t, outcomes, 1)
		assert.Equal(t, KindDisconnected, outcomes[0].Kind)

		state, err = f.states.Get(wallet.Backpack)
		require.NoError(t, err)
		assert.False(t, state.Connected)
		assert.Nil(t, state.PublicKey)
		assert.Nil(t, state.Session)
	}
}

func TestHandle_TrustInitiated(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	f.h.Handle("trust://wc?uri=wc%3Atopic-9%401%3Fbridge%3Dx%26key%3Dab&action=signMessage")

	state, err := f.states.Get(wallet.TrustWallet)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Equal(t, "topic-9", state.SessionString())
	require.Len(t, f.notified, 1)
	assert.Equal(t, "Trust Wallet opened for signing", f.notified[0].Message)
}

func TestHandle_ResolvesRespondingWallets(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	f.h.Handle("https://dapp.example/solflare-callback?public_key=PK")
	f.h.Handle("https://dapp.example/phantom-callback?errorCode=4001")
	assert.Equal(t, []wallet.Name{wallet.Solflare, wallet.Phantom}, f.resolver.calls)
}

func TestHandle_MalformedIsSwallowed(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	outcomes := f.h.Handle("https://dapp.example/%zz/solflare-callback?public_key=PK")
	assert.Nil(t, outcomes)
	assert.Empty(t, f.notified)
	assert.Empty(t, f.resolver.calls)
	assert.Contains(t, f.log.String(), "ignoring malformed response url")

	for _, s := range f.states.Snapshot() {
		assert.True(t, s.IsDefault())
	}
	snap := f.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.MalformedResponses)
	assert.Equal(t, int64(0), snap.ResponsesParsed)
}

func TestHandle_NoMarkerIsNoop(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()

	assert.Nil(t, f.h.Handle("https://dapp.example/?public_key=PK"))
	assert.Empty(t, f.resolver.calls)
	assert.Equal(t, int64(0), f.metrics.Snapshot().ResponsesParsed)
}

func TestNewHandler_Defaults(t *testing.T) {
	t.Parallel()
	states := connector.NewRegistry()
	h := NewHandler(states, WithMetrics(&metrics.Metrics{}))

	outcomes := h.Handle("https://dapp.example/solflare-callback?public_key=PK")
	require.Len(t, outcomes, 1)
	assert.Equal(t, KindConnected, outcomes[0].Kind)
}
