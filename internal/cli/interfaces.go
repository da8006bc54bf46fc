package cli

import (
	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/response"
	"github.com/mrz1836/deeplink/internal/server"
)

// Compile-time interface checks.
var (
	_ ConfigProvider  = (*config.Config)(nil)
	_ LogWriter       = (*config.Logger)(nil)
	_ FormatProvider  = (*output.Formatter)(nil)
	_ dispatch.Logger = (*config.Logger)(nil)
	_ response.Logger = (*config.Logger)(nil)
	_ server.Logger   = (*config.Logger)(nil)

	_ output.TextRenderer = stateList{}
	_ output.TextRenderer = outcomeList{}
	_ output.TextRenderer = walletList{}
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the deeplink home directory path.
	GetHome() string

	// GetAppOrigin returns the dapp origin deeplinks redirect back to.
	GetAppOrigin() string

	// GetCluster returns the Solana cluster.
	GetCluster() string

	// GetBridge returns the WalletConnect bridge URL.
	GetBridge() string

	// GetLoggingLevel returns the configured logging level.
	GetLoggingLevel() string

	// GetLoggingFile returns the configured log file path.
	GetLoggingFile() string

	// GetOutputFormat returns the default output format.
	GetOutputFormat() string

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool

	// GetDispatch returns the dispatch configuration.
	GetDispatch() config.DispatchConfig
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
