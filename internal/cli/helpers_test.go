package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deeplink/internal/config"
	"github.com/mrz1836/deeplink/internal/connector"
	"github.com/mrz1836/deeplink/internal/metrics"
	"github.com/mrz1836/deeplink/internal/output"
)

// testEnv is a command wired to a temporary home directory.
type testEnv struct {
	home   string
	cc     *CommandContext
	cmd    *cobra.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T, format output.Format) *testEnv {
	t.Helper()

	home := t.TempDir()
	c := config.Defaults()
	c.Home = home
	c.Logging.File = ""

	env := &testEnv{
		home:   home,
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
	env.cc = NewCommandContext(c, config.NullLogger(), output.NewFormatter(format, env.stdout)).
		WithMetrics(&metrics.Metrics{})

	env.cmd = &cobra.Command{Use: "test"}
	env.cmd.SetOut(env.stdout)
	env.cmd.SetErr(env.stderr)
	env.cmd.SetContext(context.Background())
	SetCmdContext(env.cmd, env.cc)
	return env
}

// registry reloads the connector states the command persisted.
func (e *testEnv) registry(t *testing.T) *connector.Registry {
	t.Helper()
	r, err := connector.Load(e.cc.Store)
	require.NoError(t, err)
	return r
}

// fakeOpener records the URLs it is asked to open.
type fakeOpener struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeOpener) Open(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeOpener) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// resetOpenFlags restores open command flags after the test.
func resetOpenFlags(t *testing.T) {
	t.Helper()
	origOpener := browserOpener
	t.Cleanup(func() {
		openUserAgent = ""
		openMobile = false
		openLaunch = false
		openTransaction = ""
		openTarget = ""
		openStructured = false
		openNoWait = false
		openQR = true
		browserOpener = origOpener
	})
}
