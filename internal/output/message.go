package output

import (
	"fmt"
	"io"
)

// Messenger prints one-line status messages for people reading the terminal.
// Warnings go to Err so they stay out of piped results.
type Messenger struct {
	Out     io.Writer
	Err     io.Writer
	Palette Palette
}

func (m *Messenger) line(w io.Writer, marker, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", marker, msg)
}

// Info prints a neutral message.
func (m *Messenger) Info(msg string) {
	m.line(m.Out, m.Palette.Cyan("*"), msg)
}

// Infof formats and prints a neutral message.
func (m *Messenger) Infof(format string, args ...any) {
	m.Info(fmt.Sprintf(format, args...))
}

// Success prints a message for a completed operation.
func (m *Messenger) Success(msg string) {
	m.line(m.Out, m.Palette.Green("✓"), msg)
}

// Successf formats and prints a success message.
func (m *Messenger) Successf(format string, args ...any) {
	m.Success(fmt.Sprintf(format, args...))
}

// Warn prints a warning to Err.
func (m *Messenger) Warn(msg string) {
	m.line(m.Err, m.Palette.Yellow("!"), msg)
}

// Warnf formats and prints a warning.
func (m *Messenger) Warnf(format string, args ...any) {
	m.Warn(fmt.Sprintf(format, args...))
}
