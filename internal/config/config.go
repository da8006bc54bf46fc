// Package config provides configuration management for deeplink.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/deeplink/internal/fileutil"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	App      AppConfig      `yaml:"app"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AppConfig describes the dapp that deeplinks point back to.
type AppConfig struct {
	// Origin is the dapp origin used for app_url and redirect links.
	Origin string `yaml:"origin"`
	// Cluster is the Solana cluster sent to Solana wallets.
	Cluster string `yaml:"cluster"`
	// Bridge is the WalletConnect bridge embedded in pairing URIs.
	Bridge string `yaml:"bridge"`
	// StructuredSign selects the JSON-RPC Trust Wallet signing request.
	StructuredSign bool `yaml:"structured_sign"`
}

// DispatchConfig defines deeplink dispatch behavior.
type DispatchConfig struct {
	// SingleFlight rejects a dispatch while the wallet has a pending attempt.
	SingleFlight bool `yaml:"single_flight"`
	// CancelOnResponse cancels the pending fallback when a response arrives.
	CancelOnResponse bool `yaml:"cancel_on_response"`
	// LaunchBrowser opens deeplinks and websites with the system browser.
	LaunchBrowser bool `yaml:"launch_browser"`
}

// ServerConfig defines the callback server settings.
type ServerConfig struct {
	Listen             string  `yaml:"listen"`
	RateLimit          float64 `yaml:"rate_limit"`
	RateBurst          int     `yaml:"rate_burst"`
	ReadTimeoutSeconds int     `yaml:"read_timeout_seconds"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For header
	// identifies the client. Empty means the peer address is always used.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
	QR            bool   `yaml:"qr"`
}

// LoggingConfig defines logging and log rotation settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from the specified file.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dlerr.WithCause(dlerr.ErrConfigNotFound, err)
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, dlerr.WithCause(dlerr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, fileutil.FilePerm)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// StatePath returns the connector state file path.
func StatePath(home string) string {
	return filepath.Join(home, "state.json")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	details := map[string]string{}

	if u, err := url.Parse(c.App.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		details["app.origin"] = fmt.Sprintf("%q is not an absolute URL", c.App.Origin)
	}
	if !IsValidCluster(c.App.Cluster) {
		details["app.cluster"] = fmt.Sprintf("%q is not one of %s", c.App.Cluster, strings.Join(Clusters, ", "))
	}
	if u, err := url.Parse(c.App.Bridge); err != nil || u.Scheme == "" || u.Host == "" {
		details["app.bridge"] = fmt.Sprintf("%q is not an absolute URL", c.App.Bridge)
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		details["server.listen"] = fmt.Sprintf("%q is not host:port", c.Server.Listen)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		details["server.rate_limit"] = "rate limit and burst must not be negative"
	}
	for _, p := range c.Server.TrustedProxies {
		if !isIPOrCIDR(p) {
			details["server.trusted_proxies"] = fmt.Sprintf("%q is not an IP address or CIDR", p)
			break
		}
	}

	if len(details) == 0 {
		return nil
	}
	return dlerr.WithSuggestion(
		dlerr.WithDetails(dlerr.ErrConfigInvalid, details),
		"run 'deeplink config show' to inspect the effective configuration",
	)
}

// IsValidCluster reports whether s names a known Solana cluster.
func IsValidCluster(s string) bool {
	for _, c := range Clusters {
		if s == c {
			return true
		}
	}
	return false
}

// GetHome returns the deeplink home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetAppOrigin returns the dapp origin.
func (c *Config) GetAppOrigin() string {
	return c.App.Origin
}

// GetCluster returns the Solana cluster.
func (c *Config) GetCluster() string {
	return c.App.Cluster
}

// GetBridge returns the WalletConnect bridge URL.
func (c *Config) GetBridge() string {
	return c.App.Bridge
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetDispatch returns the dispatch configuration.
func (c *Config) GetDispatch() DispatchConfig {
	return c.Dispatch
}

// DefaultHome returns the default deeplink home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deeplink"
	}
	return filepath.Join(home, ".deeplink")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

func isIPOrCIDR(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(s)
	return err == nil
}
