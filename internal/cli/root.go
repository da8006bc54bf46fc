// Package cli implements the deeplink command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/output"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	helpOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deeplink",
	Short: "Open Solana and WalletConnect wallets through deeplinks",
	Long: `deeplink builds wallet deeplinks, opens them, and interprets what the
wallet app sends back.

Desktop user agents are sent to the wallet website. Mobile user agents get
the wallet deeplink, and the website opens after two seconds if the app
never takes over.

Example:
  deeplink open solflare connect --mobile
  deeplink handle 'http://localhost:8080/solflare-callback?public_key=...'
  deeplink status
  deeplink serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(cmd); err != nil {
			return err
		}
		SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	helpOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(os.Stderr, err, format)
	return err
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return dlerr.ExitCode(err)
}

// annotationTolerateConfig marks commands that must run even with a broken config file.
const annotationTolerateConfig = "tolerate-config"

// initGlobals resolves the home directory and effective configuration, then
// builds the logger and formatter every command shares.
func initGlobals(cmd *cobra.Command) error {
	tolerant := cmd != nil && cmd.Annotations[annotationTolerateConfig] == "true"

	home, err := resolveHome()
	if err != nil {
		return err
	}
	if cfg, err = effectiveConfig(home, tolerant); err != nil {
		return err
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging)
	if err != nil {
		// An unusable log path must not stop wallet commands.
		logger = config.NullLogger()
	}

	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, output.ParseFormat(cfg.Output.DefaultFormat)), os.Stdout)
	formatter.SetColor(output.ResolveColor(cfg.Output.Color, os.Stdout))
	return nil
}

// resolveHome picks the data directory: --home, then DEEPLINK_HOME, then ~/.deeplink.
func resolveHome() (string, error) {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	return config.ExpandHome(home)
}

// effectiveConfig layers the config file, environment, and flags.
// A missing file means defaults. Tolerant commands also accept a broken file
// or invalid values so they can repair them.
func effectiveConfig(home string, tolerant bool) (*config.Config, error) {
	c, err := config.Load(config.Path(home))
	switch {
	case err == nil:
	case dlerr.Is(err, dlerr.ErrConfigNotFound), tolerant:
		c = config.Defaults()
	default:
		return nil, err
	}

	config.ApplyEnvironment(c)
	c.Home = home
	if c.Logging.File == config.Defaults().Logging.File {
		c.Logging.File = filepath.Join(home, "deeplink.log")
	}
	if verbose {
		c.Output.Verbose = true
		c.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		c.Output.DefaultFormat = outputFormat
	}

	if err = c.Validate(); err != nil && !tolerant {
		return nil, err
	}
	return c, nil
}

// cleanup closes the log file.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "deeplink data directory (default: ~/.deeplink)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
