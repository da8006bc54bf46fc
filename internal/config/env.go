package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "DEEPLINK_HOME"
	EnvAppOrigin    = "DEEPLINK_APP_ORIGIN"
	EnvCluster      = "DEEPLINK_CLUSTER"
	EnvBridge       = "DEEPLINK_BRIDGE"
	EnvListen       = "DEEPLINK_LISTEN"
	EnvSingleFlight = "DEEPLINK_SINGLE_FLIGHT"
	EnvOutputFormat = "DEEPLINK_OUTPUT_FORMAT"
	EnvVerbose      = "DEEPLINK_VERBOSE"
	EnvLogLevel     = "DEEPLINK_LOG_LEVEL"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvAppOrigin); v != "" {
		cfg.App.Origin = SanitizeURL(v)
	}

	if v := os.Getenv(EnvCluster); v != "" {
		cfg.App.Cluster = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvBridge); v != "" {
		cfg.App.Bridge = SanitizeURL(v)
	}

	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Listen = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvSingleFlight); v != "" {
		cfg.Dispatch.SingleFlight = parseBool(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// Origins and bridges are often pasted from a browser address bar.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}
