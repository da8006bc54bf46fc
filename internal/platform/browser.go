package platform

import (
	"context"
	"os/exec"
	"runtime"
)

// CommandFunc builds the command that opens a URL on the given OS.
type CommandFunc func(goos, url string) *exec.Cmd

// Launcher opens URLs in the host's default browser.
type Launcher struct {
	goos    string
	command CommandFunc
}

// NewLauncher creates a launcher for the running OS.
func NewLauncher() *Launcher {
	return &Launcher{goos: runtime.GOOS, command: OpenCommand}
}

// NewLauncherWithCommand creates a launcher with a custom command builder.
func NewLauncherWithCommand(goos string, command CommandFunc) *Launcher {
	return &Launcher{goos: goos, command: command}
}

// Open starts the browser on url. The opener runs detached from ctx so the
// browser survives the caller; ctx only gates whether it is started at all.
func (l *Launcher) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := l.command(l.goos, url)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenCommand returns the platform opener for url.
func OpenCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url) //nolint:gosec // URL is built from the static wallet table
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:gosec // URL is built from the static wallet table
	default:
		return exec.Command("xdg-open", url) //nolint:gosec // URL is built from the static wallet table
	}
}
