// Package deeplink constructs wallet deeplink and universal-link URLs.
package deeplink

import (
	"encoding/base64"
	"net/url"
	"sort"
	"strings"

	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// Fixture values shared by every wallet.
const (
	// Message is the literal payload of every message-signing flow.
	Message = "hello"

	// DefaultCluster is the Solana cluster sent when none is configured.
	DefaultCluster = "mainnet-beta"

	// DefaultTransaction is sent when no transaction payload is supplied.
	DefaultTransaction = "dummy_transaction"

	// DefaultSession is sent when no session token is known.
	DefaultSession = "new_session"
)

// Query parameter names.
const (
	ParamAppURL       = "app_url"
	ParamDappKey      = "dapp_encryption_public_key"
	ParamRedirectLink = "redirect_link"
	ParamCluster      = "cluster"
	ParamMessage      = "message"
	ParamTransaction  = "transaction"
	ParamSession      = "session"
	ParamRef          = "ref"
	ParamURI          = "uri"
	ParamAction       = "action"
	ParamRequest      = "request"
	ParamErrorCode    = "errorCode"
	ParamErrorMessage = "errorMessage"
	ParamSignature    = "signature"
	ParamPublicKey    = "public_key"
)

// Params are the caller-supplied inputs to a deeplink.
type Params struct {
	// AppURL is the dapp origin, used for app_url and redirect links.
	AppURL string
	// Cluster is the Solana cluster identifier.
	Cluster string
	// DappKey is the dapp encryption public key. Generated when empty.
	DappKey string
	// Session is the wallet session token. Defaults to DefaultSession.
	Session string
	// Transaction is the serialized transaction for signTransaction.
	Transaction string
	// Target is the page opened by browse. Defaults to AppURL.
	Target string
	// Bridge is the WalletConnect bridge URL. Defaults to DefaultBridge.
	Bridge string
	// Structured selects the JSON-RPC Trust Wallet signing request.
	Structured bool
}

// Link is a constructed deeplink.
type Link struct {
	Wallet   wallet.Name   `json:"wallet"`
	Action   wallet.Action `json:"action"`
	URL      string        `json:"url"`
	Fallback string        `json:"fallback"`
	// DappKey is the key embedded in the link, if any.
	DappKey string `json:"dapp_key,omitempty"`
	// WalletConnect is the pairing URI wrapped by the link, if any.
	WalletConnect string `json:"walletconnect,omitempty"`
	// Topic is the WalletConnect handshake topic, if any.
	Topic string `json:"topic,omitempty"`
}

// Builder constructs deeplinks from wallet profiles.
type Builder struct {
	keys KeySource
}

// Option configures a Builder.
type Option func(*Builder)

// WithKeySource sets the placeholder key source.
func WithKeySource(keys KeySource) Option {
	return func(b *Builder) {
		b.keys = keys
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{keys: NewRandomKeys()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the deeplink for an action on a wallet.
func (b *Builder) Build(p *wallet.Profile, action wallet.Action, params Params) (*Link, error) {
	template, ok := p.Template(action)
	if !ok {
		return nil, dlerr.WithDetails(dlerr.ErrUnsupportedAction, map[string]string{
			"wallet": p.Name.String(),
			"action": action.String(),
		})
	}

	params = withDefaults(params)
	link := &Link{Wallet: p.Name, Action: action, Fallback: p.Fallback}

	var err error
	switch {
	case p.Transport == wallet.TransportWalletConnect:
		err = b.buildWalletConnect(link, template, action, params)
	case action == wallet.ActionBrowse:
		link.URL = browseURL(template, params)
	case p.Name == wallet.Phantom:
		err = b.buildPhantom(link, p, template, action, params)
	default:
		err = b.buildSolana(link, p, template, action, params)
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// buildPhantom builds Phantom universal links.
func (b *Builder) buildPhantom(link *Link, p *wallet.Profile, template string, action wallet.Action, params Params) error {
	q := url.Values{}
	q.Set(ParamMessage, Message)
	q.Set(ParamRedirectLink, p.RedirectLink(params.AppURL, action))

	if action == wallet.ActionConnect {
		key, err := b.dappKey(params)
		if err != nil {
			return err
		}
		q.Set(ParamDappKey, key)
		q.Set(ParamCluster, params.Cluster)
		q.Set(ParamAppURL, params.AppURL)
		link.DappKey = key
	}

	link.URL = template + "?" + q.Encode()
	return nil
}

// buildSolana builds the v1 universal links shared by Solflare and Backpack.
func (b *Builder) buildSolana(link *Link, p *wallet.Profile, template string, action wallet.Action, params Params) error {
	key, err := b.dappKey(params)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set(ParamAppURL, params.AppURL)
	q.Set(ParamDappKey, key)
	q.Set(ParamRedirectLink, p.RedirectLink(params.AppURL, action))
	q.Set(ParamCluster, params.Cluster)

	switch action {
	case wallet.ActionSignMessage:
		q.Set(ParamMessage, base64.StdEncoding.EncodeToString([]byte(Message)))
		q.Set(ParamSession, params.Session)
	case wallet.ActionSignTransaction:
		q.Set(ParamTransaction, params.Transaction)
		q.Set(ParamSession, params.Session)
	case wallet.ActionDisconnect:
		q.Set(ParamSession, params.Session)
	case wallet.ActionConnect, wallet.ActionBrowse:
	}

	link.URL = template + "?" + q.Encode()
	link.DappKey = key
	return nil
}

// buildWalletConnect wraps a WalletConnect pairing URI in the app scheme.
func (b *Builder) buildWalletConnect(link *Link, template string, action wallet.Action, params Params) error {
	key, err := b.keys.SymmetricKey()
	if err != nil {
		return err
	}

	wc := WalletConnectURI{
		Topic:  b.keys.Topic(),
		Bridge: params.Bridge,
		Key:    key,
	}

	plainSign := false
	if action == wallet.ActionSignMessage {
		if params.Structured {
			request, reqErr := trustSignRequest(Message)
			if reqErr != nil {
				return reqErr
			}
			wc.Extra = url.Values{ParamRequest: {request}}
		} else {
			wc.Extra = url.Values{ParamMessage: {Message}}
			plainSign = true
		}
	}

	uri := wc.String()
	link.URL = template + "?" + ParamURI + "=" + url.QueryEscape(uri)
	if plainSign {
		link.URL += "&" + ParamAction + "=" + string(wallet.ActionSignMessage)
	}
	link.WalletConnect = uri
	link.Topic = wc.Topic
	return nil
}

// browseURL opens target inside the wallet's in-app browser.
func browseURL(template string, params Params) string {
	return template + "/" + url.QueryEscape(params.Target) + "?" + ParamRef + "=" + url.QueryEscape(params.AppURL)
}

func (b *Builder) dappKey(params Params) (string, error) {
	if params.DappKey != "" {
		return params.DappKey, nil
	}
	return b.keys.DappKey()
}

func withDefaults(params Params) Params {
	params.AppURL = strings.TrimSuffix(params.AppURL, "/")
	if params.Cluster == "" {
		params.Cluster = DefaultCluster
	}
	if params.Session == "" {
		params.Session = DefaultSession
	}
	if params.Transaction == "" {
		params.Transaction = DefaultTransaction
	}
	if params.Target == "" {
		params.Target = params.AppURL
	}
	if params.Bridge == "" {
		params.Bridge = DefaultBridge
	}
	return params
}

func sortedKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
