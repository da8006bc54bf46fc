package cli

import (
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/response"
	"github.com/mrz1836/deeplink/internal/server"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var serveListen string

// serveCmd runs the callback server.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch and callback server",
	Long: `Serve wallet dispatch pages and receive wallet callbacks.

Routes:
  /                          wallet index (or a callback when a query is present)
  /dispatch/<wallet>/<action> open a wallet for the requesting browser
  /<wallet>-callback ...     wallet redirect targets
  /api/state, /api/metrics   JSON state and counters
  /healthz                   liveness

Point app.origin at this server so wallets redirect back to it.

Example:
  deeplink serve
  deeplink serve --listen 0.0.0.0:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: server.listen)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cc.Config.Server.Listen
	if serveListen != "" {
		addr = serveListen
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	srv, d, err := newServer(cc, cmd.OutOrStdout())
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer d.Close()

	cc.Formatter.Messenger(cmd.OutOrStdout(), cmd.ErrOrStderr()).Infof("Listening on http://%s", ln.Addr())
	return srv.Serve(ctx, ln)
}

// newServer wires the dispatcher, response handler, and HTTP server.
// Wallet responses are echoed to w.
func newServer(cc *CommandContext, w io.Writer) (*server.Server, *dispatch.Dispatcher, error) {
	states, err := cc.LoadRegistry()
	if err != nil {
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultErrorWriter = cc.Logger.Named("gin").Writer(config.LogLevelError)

	d := cc.NewDispatcher(&dispatch.Recorder{}, states)
	m := cc.Formatter.Messenger(w, w)
	handler := response.NewHandler(states,
		response.WithResolver(d),
		response.WithLogger(cc.Logger.Named("response")),
		response.WithMetrics(cc.Metrics),
		response.WithNotifier(response.NotifierFunc(func(o response.Outcome) {
			stamp := cc.Formatter.Palette().Dim(time.Now().Format(time.TimeOnly))
			if o.Err() != nil {
				m.Warnf("%s %s", stamp, o.Message)
				return
			}
			m.Infof("%s %s", stamp, o.Message)
		})),
	)

	opts := []server.Option{
		server.WithLogger(cc.Logger.Named("server")),
		server.WithMetrics(cc.Metrics),
		server.WithStore(cc.Store),
		server.WithParams(cc.Params()),
		server.WithReadTimeout(time.Duration(cc.Config.Server.ReadTimeoutSeconds) * time.Second),
		server.WithTrustedProxies(cc.Config.Server.TrustedProxies),
	}
	if cc.Config.Server.RateLimit > 0 {
		opts = append(opts, server.WithRateLimiter(server.NewRateLimiter(cc.Config.Server.RateLimit, cc.Config.Server.RateBurst)))
	}
	return server.New(d, handler, states, opts...), d, nil
}
