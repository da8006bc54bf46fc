package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/deeplink"
	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/platform"
	"github.com/mrz1836/deeplink/internal/response"
	"github.com/mrz1836/deeplink/internal/server"
	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	server     *server.Server
	dispatcher *dispatch.Dispatcher
	states     *connector.Registry
	metrics    *metrics.Metrics
	clock      *clock.Mock
}

func newFixture(t *testing.T, opts ...server.Option) *fixture {
	t.Helper()

	f := &fixture{
		states:  connector.NewRegistry(),
		metrics: &metrics.Metrics{},
		clock:   clock.NewMock(),
	}
	f.dispatcher = dispatch.New(deeplink.NewBuilder(), &dispatch.Recorder{}, f.states,
		dispatch.WithClock(f.clock),
		dispatch.WithMetrics(f.metrics),
	)
	t.Cleanup(f.dispatcher.Close)

	handler := response.NewHandler(f.states,
		response.WithResolver(f.dispatcher),
		response.WithMetrics(f.metrics),
	)
	base := []server.Option{
		server.WithMetrics(f.metrics),
		server.WithParams(deeplink.Params{AppURL: "http://localhost:8080", Cluster: "devnet"}),
	}
	f.server = server.New(f.dispatcher, handler, f.states, append(base, opts...)...)
	return f
}

func (f *fixture) get(t *testing.T, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func mobile() map[string]string {
	return map[string]string{"User-Agent": platform.UserAgentIPhone}
}

func desktop() map[string]string {
	return map[string]string{"User-Agent": platform.UserAgentDesktop}
}

func acceptJSON(h map[string]string) map[string]string {
	out := map[string]string{"Accept": "application/json"}
	for k, v := range h {
		out[k] = v
	}
	return out
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIndex(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/dispatch/phantom/browse"`)
	assert.Contains(t, body, `href="/dispatch/solflare/signTransaction"`)
	assert.Contains(t, body, `href="/dispatch/trustWallet/connect"`)
	assert.Contains(t, body, "Trust Wallet")
	assert.NotContains(t, body, "http-equiv")
}

func TestDispatch_DesktopRedirects(t *testing.T) {
	t.Parallel()

	for _, p := range wallet.All() {
		t.Run(p.Name.String(), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec := f.get(t, "/dispatch/"+p.Name.String(), desktop())
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, p.Fallback, rec.Header().Get("Location"))
			assert.Zero(t, f.dispatcher.Pending(p.Name))
		})
	}
}

func TestDispatch_MobileInterstitial(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/dispatch/solflare/connect", mobile())
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<meta http-equiv="refresh" content="2;url=https://solflare.com">`)
	assert.Contains(t, body, `<script>window.location.href = "https://solflare.com/ul/v1/connect?`)
	assert.Contains(t, body, `id="open" href="https://solflare.com/ul/v1/connect?`)
	assert.NotContains(t, body, "<iframe")
	assert.Contains(t, body, "cluster=devnet")
	assert.Contains(t, body, `id="fallback" href="https://solflare.com"`)

	assert.Equal(t, 1, f.dispatcher.Pending(wallet.Solflare))
	state, err := f.states.Get(wallet.Solflare)
	require.NoError(t, err)
	assert.Equal(t, connector.PhaseConnecting, state.Phase)
}

func TestDispatch_WalletConnectLinkNotFiltered(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/dispatch/trust", mobile())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="trust://wc?`)
	assert.NotContains(t, rec.Body.String(), "ZgotmplZ")
}

func TestDispatch_InFlight(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.get(t, "/dispatch/backpack/connect", mobile()).Code)

	rec := f.get(t, "/dispatch/backpack/connect", acceptJSON(mobile()))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var out output.ErrorOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, dlerr.ErrDispatchInFlight.Code, out.Error.Code)

	f.clock.Add(dispatch.FallbackDelay)
	assert.Eventually(t, func() bool {
		return f.dispatcher.Pending(wallet.Backpack) == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusOK, f.get(t, "/dispatch/backpack/connect", mobile()).Code)
}

func TestDispatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown wallet", "/dispatch/solflair", http.StatusNotFound, dlerr.ErrWalletNotFound.Code},
		{"unknown action", "/dispatch/phantom/explode", http.StatusBadRequest, dlerr.ErrInvalidInput.Code},
		{"unsupported action", "/dispatch/trustWallet/browse", http.StatusBadRequest, dlerr.ErrUnsupportedAction.Code},
		{"bad structured flag", "/dispatch/trustWallet/signMessage?structured=maybe", http.StatusBadRequest, dlerr.ErrInvalidInput.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec := f.get(t, tt.target, acceptJSON(mobile()))
			assert.Equal(t, tt.status, rec.Code)

			var out output.ErrorOutput
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, tt.code, out.Error.Code)
		})
	}
}

func TestDispatch_ErrorPage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/dispatch/solflair", mobile())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "did you mean &#34;solflare&#34;?")
}

func TestCallback_ConnectResolvesFallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.get(t, "/dispatch/solflare/connect", mobile()).Code)
	require.Equal(t, 1, f.dispatcher.Pending(wallet.Solflare))

	rec := f.get(t, "/solflare-callback?public_key=PK123&session=S1", acceptJSON(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Outcomes []response.Outcome `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Outcomes, 1)
	assert.Equal(t, response.KindConnected, out.Outcomes[0].Kind)
	assert.Equal(t, "PK123", out.Outcomes[0].PublicKey)

	assert.Zero(t, f.dispatcher.Pending(wallet.Solflare))
	assert.Equal(t, int64(1), f.metrics.Snapshot().FallbacksCancelled)

	state, err := f.states.Get(wallet.Solflare)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Equal(t, "PK123", state.PublicKeyString())
	assert.Equal(t, "S1", state.SessionString())
}

func TestCallback_WalletError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/backpack-sign-callback?errorCode=4001&errorMessage=UserRejected", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<li class="failure">Backpack error 4001: UserRejected</li>`)

	state, err := f.states.Get(wallet.Backpack)
	require.NoError(t, err)
	assert.True(t, state.IsDefault())
	assert.Equal(t, int64(1), f.metrics.Snapshot().WalletErrors)
}

func TestCallback_RootWithQuery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/?foo=bar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No wallet response recognized.")

	rec = f.get(t, "/?foo=bar", acceptJSON(nil))
	assert.JSONEq(t, `{"outcomes":[]}`, rec.Body.String())
}

func TestAPIState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.get(t, "/phantom-callback?public_key=PHX", nil)

	rec := f.get(t, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Wallets []connector.State `json:"wallets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Wallets, len(wallet.Names()))
	assert.Equal(t, wallet.Phantom, out.Wallets[0].Wallet)
	assert.True(t, out.Wallets[0].Connected)
	assert.Equal(t, "PHX", out.Wallets[0].PublicKeyString())
	assert.False(t, out.Wallets[1].Connected)
}

func TestAPIMetrics(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.get(t, "/dispatch/phantom", desktop())

	rec := f.get(t, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Metrics      metrics.Snapshot `json:"metrics"`
		FallbackRate float64          `json:"fallback_rate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.Metrics.DispatchesTotal)
	assert.Equal(t, int64(1), out.Metrics.WebsiteOpens)
	assert.InDelta(t, 0.0, out.FallbackRate, 0.0001)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	limiter := server.NewRateLimiter(0.01, 2)
	f := newFixture(t, server.WithRateLimiter(limiter))

	assert.Equal(t, http.StatusOK, f.get(t, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz", nil).Code)

	rec := f.get(t, "/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	t.Parallel()
	limiter := server.NewRateLimiter(0.01, 2)
	f := newFixture(t, server.WithRateLimiter(limiter))

	allowed := 0
	for i := range 50 {
		rec := f.get(t, "/healthz", map[string]string{"X-Forwarded-For": fmt.Sprintf("203.0.113.%d", i)})
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	t.Parallel()
	limiter := server.NewRateLimiter(0.01, 1)
	// httptest requests come from 192.0.2.1.
	f := newFixture(t, server.WithRateLimiter(limiter), server.WithTrustedProxies([]string{"192.0.2.0/24"}))

	for i := range 3 {
		rec := f.get(t, "/healthz", map[string]string{"X-Forwarded-For": fmt.Sprintf("203.0.113.%d", i)})
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := f.get(t, "/healthz", map[string]string{"X-Forwarded-For": "203.0.113.0"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 3, limiter.Len())
}

func TestNew_InvalidTrustedProxies(t *testing.T) {
	t.Parallel()
	limiter := server.NewRateLimiter(0.01, 1)
	f := newFixture(t, server.WithRateLimiter(limiter), server.WithTrustedProxies([]string{"not-a-proxy"}))

	assert.Equal(t, http.StatusOK, f.get(t, "/healthz", map[string]string{"X-Forwarded-For": "203.0.113.1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.get(t, "/healthz", map[string]string{"X-Forwarded-For": "203.0.113.2"}).Code)
}

func TestPersistence(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.json")
	f := newFixture(t, server.WithStore(connector.NewFileStore(path)))

	f.get(t, "/solflare-callback?public_key=PK9", nil)

	restored, err := connector.Load(connector.NewFileStore(path))
	require.NoError(t, err)
	state, err := restored.Get(wallet.Solflare)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Equal(t, "PK9", state.PublicKeyString())
}

func TestServe_Shutdown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- f.server.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ln.Addr().String()+"/healthz", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRequestURL_Forwarded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, "/phantom-callback?public_key=PK", map[string]string{
		"X-Forwarded-Proto": "https",
		"Accept":            "application/json",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"kind":"connected"`))
}
