package server

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrz1836/deeplink/internal/dispatch"
	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/response"
	"github.com/mrz1836/deeplink/internal/wallet"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// handleIndex lists the wallets. Wallets that redirect to the bare
// origin land here with their response in the query string.
func (s *Server) handleIndex(c *gin.Context) {
	if c.Request.URL.RawQuery != "" {
		s.handleCallback(c)
		return
	}

	profiles := wallet.All()
	entries := make([]walletEntry, 0, len(profiles))
	for _, p := range profiles {
		actions := make([]string, 0, len(p.Templates))
		for _, a := range p.Actions() {
			actions = append(actions, a.String())
		}
		entries = append(entries, walletEntry{
			Name:        p.Name.String(),
			DisplayName: p.DisplayName,
			Website:     p.Fallback,
			Actions:     actions,
		})
	}
	c.HTML(http.StatusOK, "index", page{Title: "Wallets", Wallets: entries})
}

func (s *Server) handleDispatch(c *gin.Context) {
	name, err := wallet.ParseName(c.Param("wallet"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	var action wallet.Action
	if raw := c.Param("action"); raw != "" {
		if action, err = wallet.ParseAction(raw); err != nil {
			s.renderError(c, err)
			return
		}
	}

	params := s.params
	if v := c.Query("transaction"); v != "" {
		params.Transaction = v
	}
	if v := c.Query("target"); v != "" {
		params.Target = v
	}
	if v := c.Query("structured"); v != "" {
		if params.Structured, err = strconv.ParseBool(v); err != nil {
			s.renderError(c, dlerr.WithDetails(dlerr.ErrInvalidInput, map[string]string{"structured": v}))
			return
		}
	}

	// The browser performs the navigation; the dispatcher only tracks the attempt.
	res, err := s.dispatcher.Dispatch(c.Request.Context(), dispatch.Request{
		Wallet:    name,
		Action:    action,
		UserAgent: c.Request.UserAgent(),
		Params:    params,
		Navigator: &dispatch.Recorder{},
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	if res.Link == nil {
		c.Redirect(http.StatusFound, res.Website)
		return
	}
	s.persist()

	profile := wallet.MustLookup(res.Wallet)
	c.HTML(http.StatusOK, "interstitial", page{
		Title:   "Opening " + profile.DisplayName,
		Refresh: refreshDirective(res.Website),
		Wallet:  profile.DisplayName,
		Action:  res.Action.String(),
		Link:    template.URL(res.Link.URL), //nolint:gosec // G203: link is built by the deeplink builder, not taken from input
		Website: res.Website,
	})
}

func (s *Server) handleCallback(c *gin.Context) {
	outcomes := s.handler.Handle(requestURL(c.Request))
	if len(outcomes) > 0 {
		s.persist()
	}
	if outcomes == nil {
		outcomes = []response.Outcome{}
	}

	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
	default:
		c.HTML(http.StatusOK, "outcome", page{Title: "Wallet response", Outcomes: outcomes})
	}
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"wallets": s.states.Snapshot()})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":       s.metrics.Snapshot(),
		"fallback_rate": s.metrics.FallbackRate(),
	})
}

// renderError writes err as JSON or an HTML page with a status derived from its exit code.
func (s *Server) renderError(c *gin.Context, err error) {
	status := httpStatus(err)
	detail := output.NewErrorDetail(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(status, output.ErrorOutput{Error: detail})
	default:
		c.HTML(status, "error", page{Title: "Error", Error: &detail})
	}
}

// httpStatus maps CLI exit codes onto HTTP status codes.
func httpStatus(err error) int {
	switch dlerr.ExitCode(err) {
	case dlerr.ExitInput:
		return http.StatusBadRequest
	case dlerr.ExitNotFound:
		return http.StatusNotFound
	case dlerr.ExitConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// refreshDirective sends the browser to website after the fallback delay.
func refreshDirective(website string) string {
	seconds := int(dispatch.FallbackDelay.Seconds())
	return strconv.Itoa(seconds) + ";url=" + website
}

// requestURL reconstructs the absolute URL of the request.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
