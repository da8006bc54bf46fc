package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/deeplink"
	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/output"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Store     connector.Store
	Metrics   *metrics.Metrics
}

// NewCommandContext creates a context with the given dependencies.
// Connector state is stored under the configured home directory.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	if logger == nil {
		logger = config.NullLogger()
	}
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Store:     connector.NewFileStore(config.StatePath(cfg.GetHome())),
		Metrics:   metrics.Global,
	}
}

// WithStore sets the connector state store.
func (c *CommandContext) WithStore(s connector.Store) *CommandContext {
	c.Store = s
	return c
}

// WithMetrics sets the metrics sink.
func (c *CommandContext) WithMetrics(m *metrics.Metrics) *CommandContext {
	c.Metrics = m
	return c
}

// LoadRegistry restores connector states from the store.
func (c *CommandContext) LoadRegistry() (*connector.Registry, error) {
	return connector.Load(c.Store)
}

// SaveRegistry persists connector states to the store.
func (c *CommandContext) SaveRegistry(r *connector.Registry) error {
	return r.Save(c.Store)
}

// Params returns the deeplink parameters from configuration.
func (c *CommandContext) Params() deeplink.Params {
	return deeplink.Params{
		AppURL:     c.Config.GetAppOrigin(),
		Cluster:    c.Config.GetCluster(),
		Bridge:     c.Config.GetBridge(),
		Structured: c.Config.App.StructuredSign,
	}
}

// NewDispatcher creates a dispatcher configured from the context.
func (c *CommandContext) NewDispatcher(nav dispatch.Navigator, states *connector.Registry) *dispatch.Dispatcher {
	d := c.Config.GetDispatch()
	return dispatch.New(deeplink.NewBuilder(), nav, states,
		dispatch.WithLogger(c.Logger.Named("dispatch")),
		dispatch.WithMetrics(c.Metrics),
		dispatch.WithSingleFlight(d.SingleFlight),
		dispatch.WithCancelOnResponse(d.CancelOnResponse),
	)
}

type cmdContextKey struct{}

// SetCmdContext attaches a CommandContext to the command.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to the command, or
// one built from the globals when none is attached.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cmdContextKey{}).(*CommandContext); ok {
			return cc
		}
	}
	return NewCommandContext(cfg, logger, formatter)
}
