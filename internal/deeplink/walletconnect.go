package deeplink

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

const (
	// DefaultBridge is the WalletConnect v1 bridge embedded in pairing URIs.
	DefaultBridge = "https://bridge.walletconnect.org"

	// walletConnectVersion is the protocol version segment of the URI.
	walletConnectVersion = "1"

	// TrustSignMessageMethod is the Trust Wallet JSON-RPC signing method.
	TrustSignMessageMethod = "trust_signMessage"

	// EthereumCoinType is the SLIP-44 coin type for Ethereum.
	EthereumCoinType = 60
)

// WalletConnectURI is a parsed WalletConnect v1 pairing URI
// (wc:{topic}@{version}?bridge={bridge}&key={key}).
type WalletConnectURI struct {
	Topic   string
	Version string
	Bridge  string
	Key     string
	Extra   url.Values
}

// String encodes the URI.
func (w WalletConnectURI) String() string {
	version := w.Version
	if version == "" {
		version = walletConnectVersion
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("wc:%s@%s?bridge=%s&key=%s", w.Topic, version, url.QueryEscape(w.Bridge), w.Key))
	for _, k := range sortedKeys(w.Extra) {
		for _, v := range w.Extra[k] {
			sb.WriteString("&" + url.QueryEscape(k) + "=" + url.QueryEscape(v))
		}
	}
	return sb.String()
}

// ParseWalletConnectURI parses a wc: pairing URI.
func ParseWalletConnectURI(raw string) (*WalletConnectURI, error) {
	rest, ok := strings.CutPrefix(raw, "wc:")
	if !ok {
		return nil, dlerr.WithDetails(dlerr.ErrInvalidInput, map[string]string{"uri": raw, "reason": "missing wc: prefix"})
	}

	handshake, query, _ := strings.Cut(rest, "?")
	topic, version, ok := strings.Cut(handshake, "@")
	if !ok || topic == "" || version == "" {
		return nil, dlerr.WithDetails(dlerr.ErrInvalidInput, map[string]string{"uri": raw, "reason": "missing topic or version"})
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, dlerr.Wrap(err, "parsing walletconnect query")
	}

	w := &WalletConnectURI{
		Topic:   topic,
		Version: version,
		Bridge:  values.Get("bridge"),
		Key:     values.Get("key"),
	}
	values.Del("bridge")
	values.Del("key")
	if len(values) > 0 {
		w.Extra = values
	}
	return w, nil
}

// signRequest is the structured Trust Wallet signing payload.
type signRequest struct {
	Method string              `json:"method"`
	Params []signRequestParams `json:"params"`
}

type signRequestParams struct {
	Network int    `json:"network"`
	Message string `json:"message"`
}

// trustSignRequest encodes the trust_signMessage JSON-RPC payload.
func trustSignRequest(message string) (string, error) {
	data, err := json.Marshal(signRequest{
		Method: TrustSignMessageMethod,
		Params: []signRequestParams{{Network: EthereumCoinType, Message: message}},
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
