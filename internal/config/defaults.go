package config

import "github.com/mrz1836/deeplink/internal/deeplink"

// DefaultAppOrigin is the dapp origin used when none is configured.
const DefaultAppOrigin = "http://localhost:8080"

// DefaultCluster is the Solana cluster used when none is configured.
const DefaultCluster = deeplink.DefaultCluster

// DefaultBridge is the WalletConnect v1 bridge.
const DefaultBridge = deeplink.DefaultBridge

// DefaultListen is the callback server listen address.
const DefaultListen = "127.0.0.1:8080"

// Clusters are the accepted Solana cluster names.
//
//nolint:gochecknoglobals // Configuration default constant
var Clusters = []string{"mainnet-beta", "devnet", "testnet"}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.deeplink",
		App: AppConfig{
			Origin:         DefaultAppOrigin,
			Cluster:        DefaultCluster,
			Bridge:         DefaultBridge,
			StructuredSign: false,
		},
		Dispatch: DispatchConfig{
			SingleFlight:     true,
			CancelOnResponse: true,
			LaunchBrowser:    false,
		},
		Server: ServerConfig{
			Listen:             DefaultListen,
			RateLimit:          10,
			RateBurst:          20,
			ReadTimeoutSeconds: 10,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
			QR:            true,
		},
		Logging: LoggingConfig{
			Level:      "error",
			File:       "~/.deeplink/deeplink.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   false,
		},
	}
}
