package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/output"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify deeplink configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.deeplink/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  deeplink config init
  deeplink config init --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationTolerateConfig: "true"},
	RunE:        runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: file values with environment
overrides and flags applied.

Example:
  deeplink config show
  deeplink config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

Examples:
  deeplink config get app.origin
  deeplink config get dispatch.single_flight
  deeplink config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.
The configuration file is updated immediately.

Examples:
  deeplink config set app.origin https://dapp.example
  deeplink config set app.cluster devnet
  deeplink config set dispatch.cancel_on_response false`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationTolerateConfig: "true"},
	RunE:        runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// setting reads and writes one configuration value as a string.
type setting struct {
	get func(c *config.Config) string
	set func(c *config.Config, v string) error
}

//nolint:gochecknoglobals // Static configuration key table
var settings = map[string]setting{
	"home": stringSetting(func(c *config.Config) *string { return &c.Home }),

	"app.origin":          urlSetting(func(c *config.Config) *string { return &c.App.Origin }),
	"app.cluster":         oneOfSetting(func(c *config.Config) *string { return &c.App.Cluster }, config.Clusters...),
	"app.bridge":          urlSetting(func(c *config.Config) *string { return &c.App.Bridge }),
	"app.structured_sign": boolSetting(func(c *config.Config) *bool { return &c.App.StructuredSign }),

	"dispatch.single_flight":      boolSetting(func(c *config.Config) *bool { return &c.Dispatch.SingleFlight }),
	"dispatch.cancel_on_response": boolSetting(func(c *config.Config) *bool { return &c.Dispatch.CancelOnResponse }),
	"dispatch.launch_browser":     boolSetting(func(c *config.Config) *bool { return &c.Dispatch.LaunchBrowser }),

	"server.listen":               stringSetting(func(c *config.Config) *string { return &c.Server.Listen }),
	"server.rate_limit":           floatSetting(func(c *config.Config) *float64 { return &c.Server.RateLimit }),
	"server.rate_burst":           intSetting(func(c *config.Config) *int { return &c.Server.RateBurst }),
	"server.read_timeout_seconds": intSetting(func(c *config.Config) *int { return &c.Server.ReadTimeoutSeconds }),

	"output.default_format": oneOfSetting(func(c *config.Config) *string { return &c.Output.DefaultFormat }, "text", "json", "auto"),
	"output.color":          oneOfSetting(func(c *config.Config) *string { return &c.Output.Color }, "auto", "always", "never"),
	"output.verbose":        boolSetting(func(c *config.Config) *bool { return &c.Output.Verbose }),
	"output.qr":             boolSetting(func(c *config.Config) *bool { return &c.Output.QR }),

	"logging.level":        oneOfSetting(func(c *config.Config) *string { return &c.Logging.Level }, "off", "error", "debug"),
	"logging.file":         stringSetting(func(c *config.Config) *string { return &c.Logging.File }),
	"logging.max_size_mb":  intSetting(func(c *config.Config) *int { return &c.Logging.MaxSizeMB }),
	"logging.max_backups":  intSetting(func(c *config.Config) *int { return &c.Logging.MaxBackups }),
	"logging.max_age_days": intSetting(func(c *config.Config) *int { return &c.Logging.MaxAgeDays }),
	"logging.compress":     boolSetting(func(c *config.Config) *bool { return &c.Logging.Compress }),
}

func stringSetting(field func(*config.Config) *string) setting {
	return setting{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func urlSetting(field func(*config.Config) *string) setting {
	return setting{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			*field(c) = config.SanitizeURL(v)
			return nil
		},
	}
}

func oneOfSetting(field func(*config.Config) *string, valid ...string) setting {
	return setting{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			for _, ok := range valid {
				if v == ok {
					*field(c) = v
					return nil
				}
			}
			return invalidValue(v, fmt.Sprintf("%v", valid))
		},
	}
}

func boolSetting(field func(*config.Config) *bool) setting {
	return setting{
		get: func(c *config.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return invalidValue(v, "true or false")
			}
			*field(c) = b
			return nil
		},
	}
}

func intSetting(field func(*config.Config) *int) setting {
	return setting{
		get: func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return invalidValue(v, "a non-negative integer")
			}
			*field(c) = n
			return nil
		},
	}
}

func floatSetting(field func(*config.Config) *float64) setting {
	return setting{
		get: func(c *config.Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return invalidValue(v, "a non-negative number")
			}
			*field(c) = f
			return nil
		},
	}
}

// listSetting reads and writes a comma-separated list. An empty value clears it.
func listSetting(field func(*config.Config) *[]string) setting {
	return setting{
		get: func(c *config.Config) string { return strings.Join(*field(c), ",") },
		set: func(c *config.Config, v string) error {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*field(c) = items
			return nil
		},
	}
}

func invalidValue(value, valid string) error {
	return dlerr.WithDetails(dlerr.ErrInvalidInput, map[string]string{"value": value, "valid": valid})
}

func lookupSetting(path string) (setting, error) {
	s, ok := settings[path]
	if !ok {
		return setting{}, dlerr.WithSuggestion(
			dlerr.WithDetails(dlerr.ErrNotFound, map[string]string{"key": path}),
			"run 'deeplink config show' to list configuration keys",
		)
	}
	return s, nil
}

// settingKeys returns all configuration keys in sorted order.
func settingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Config.GetHome())

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return dlerr.WithSuggestion(
			dlerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Config.GetHome()
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.IsJSON() {
		return output.FormatSuccess(w, "configuration initialized at "+configPath, output.FormatJSON)
	}
	cc.Formatter.Messenger(w, cmd.ErrOrStderr()).Successf("Configuration initialized at %s", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - app.origin: Origin wallets redirect back to (point it at 'deeplink serve')")
	outln(w, "  - app.cluster: Solana cluster (mainnet-beta/devnet/testnet)")
	outln(w, "  - dispatch.single_flight: Reject a dispatch while one is pending")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	if cc.Formatter.IsJSON() {
		return displayConfigJSON(w, cc.Config)
	}
	return displayConfigText(w, cc.Config, cc.Formatter.Palette())
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	s, err := lookupSetting(args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), s.get(cc.Config))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, value := args[0], args[1]
	cc := GetCmdContext(cmd)

	s, err := lookupSetting(path)
	if err != nil {
		return err
	}

	// Load current config from file, not the effective one with env overrides
	configPath := config.Path(cc.Config.GetHome())
	currentCfg, err := config.Load(configPath)
	if err != nil {
		if !dlerr.Is(err, dlerr.ErrConfigNotFound) {
			return err
		}
		currentCfg = config.Defaults()
		currentCfg.Home = cc.Config.GetHome()
	}

	if err = s.set(currentCfg, value); err != nil {
		return err
	}
	if err = currentCfg.Validate(); err != nil {
		return err
	}
	if err = config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cc.Formatter.Messenger(cmd.OutOrStdout(), cmd.ErrOrStderr()).Successf("Set %s = %s", path, s.get(currentCfg))
	return nil
}

// displayConfigText shows the config as aligned key/value rows.
func displayConfigText(w io.Writer, c *config.Config, p output.Palette) error {
	table := output.NewTable("KEY", "VALUE")
	table.SetPalette(p)
	for _, k := range settingKeys() {
		table.AddRow(k, settings[k].get(c))
	}
	return table.Render(w)
}

// displayConfigJSON shows the config as a flat JSON object.
func displayConfigJSON(w io.Writer, c *config.Config) error {
	values := make(map[string]string, len(settings))
	for k, s := range settings {
		values[k] = s.get(c)
	}
	return output.WriteJSON(w, values)
}
