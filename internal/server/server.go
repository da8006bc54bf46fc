// Package server serves wallet dispatch pages and receives wallet callbacks over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/deeplink"
	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/response"
	"github.com/mrz1836/deeplink/internal/wallet"
)

const (
	defaultReadTimeout = 10 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Logger is the logging interface used by the server.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Server routes dispatch requests and wallet callbacks.
type Server struct {
	engine     *gin.Engine
	dispatcher *dispatch.Dispatcher
	handler    *response.Handler
	states     *connector.Registry
	store      connector.Store
	metrics    *metrics.Metrics
	logger     Logger
	limiter    *RateLimiter
	params     deeplink.Params
	proxies    []string

	readTimeout time.Duration

	saveMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics sets the metrics exposed on /api/metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithStore persists connector states after every state change.
func WithStore(store connector.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRateLimiter limits requests per client IP.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithTrustedProxies lists the proxy IPs or CIDRs allowed to set
// X-Forwarded-For. By default no proxy is trusted and the client is the peer address.
func WithTrustedProxies(proxies []string) Option {
	return func(s *Server) {
		s.proxies = proxies
	}
}

// WithParams sets the base deeplink parameters (origin, cluster, bridge).
func WithParams(p deeplink.Params) Option {
	return func(s *Server) {
		s.params = p
	}
}

// WithReadTimeout sets the request header read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// New creates a Server and registers its routes.
func New(dispatcher *dispatch.Dispatcher, handler *response.Handler, states *connector.Registry, opts ...Option) *Server {
	s := &Server{
		dispatcher:  dispatcher,
		handler:     handler,
		states:      states,
		metrics:     metrics.Global,
		logger:      nopLogger{},
		readTimeout: defaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	if err := s.engine.SetTrustedProxies(s.proxies); err != nil {
		s.logger.Error("ignoring trusted proxies %v: %v", s.proxies, err)
		_ = s.engine.SetTrustedProxies(nil)
	}
	s.engine.Use(gin.Recovery(), requestLog(s.logger))
	if s.limiter != nil {
		s.engine.Use(s.limiter.Middleware())
	}
	s.engine.SetHTMLTemplate(parseTemplates())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/", s.handleIndex)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/dispatch/:wallet", s.handleDispatch)
	r.GET("/dispatch/:wallet/:action", s.handleDispatch)

	for _, p := range wallet.All() {
		for _, path := range p.CallbackPaths() {
			r.GET(path, s.handleCallback)
		}
	}

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/metrics", s.handleMetrics)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: s.readTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Debug("serving on %s", ln.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// persist saves connector states when a store is configured.
func (s *Server) persist() {
	if s.store == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.states.Save(s.store); err != nil {
		s.logger.Error("saving connector state: %v", err)
	}
}

// requestLog logs each request's method, path, status, and latency.
// Query strings are not logged since callbacks carry keys and signatures.
func requestLog(l Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			l.Error("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		l.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
