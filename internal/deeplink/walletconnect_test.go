package deeplink

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

func TestWalletConnectURI_String(t *testing.T) {
	t.Parallel()
	uri := WalletConnectURI{
		Topic:  "8a5e5bdc-a0e4-4702-ba63-8f1a5655744f",
		Bridge: DefaultBridge,
		Key:    "41791102999c339c844880b23950704cc43aa840f3739e365323cda4dfa89e7a",
	}
	assert.Equal(t,
		"wc:8a5e5bdc-a0e4-4702-ba63-8f1a5655744f@1?bridge=https%3A%2F%2Fbridge.walletconnect.org&key=41791102999c339c844880b23950704cc43aa840f3739e365323cda4dfa89e7a",
		uri.String())
}

func TestWalletConnectURI_RoundTrip(t *testing.T) {
	t.Parallel()
	in := WalletConnectURI{
		Topic:   "topic",
		Version: "1",
		Bridge:  "https://k.bridge.walletconnect.org",
		Key:     "beef",
		Extra:   url.Values{"message": {"hello world"}},
	}

	out, err := ParseWalletConnectURI(in.String())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestParseWalletConnectURI_Invalid(t *testing.T) {
	t.Parallel()
	tests := []string{
		"",
		"https://bridge.walletconnect.org",
		"wc:",
		"wc:topic-without-version?bridge=x",
		"wc:@1?bridge=x",
		"wc:topic@1?bridge=%zz",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			_, err := ParseWalletConnectURI(raw)
			require.Error(t, err)
		})
	}
}

func TestParseWalletConnectURI_MissingPrefix(t *testing.T) {
	t.Parallel()
	_, err := ParseWalletConnectURI("trust://wc")
	require.ErrorIs(t, err, dlerr.ErrInvalidInput)
}
