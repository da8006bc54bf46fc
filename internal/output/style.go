package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette styles text with basic ANSI colors when enabled. The zero value is plain.
type Palette struct {
	r *lipgloss.Renderer
}

// NewPalette returns a palette that colors text only when enabled is true.
// The renderer is pinned to the 16-color profile so the escape sequences do not
// depend on the environment the process happens to run in.
func NewPalette(enabled bool) Palette {
	if !enabled {
		return Palette{}
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return Palette{r: r}
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool {
	return p.r != nil
}

func (p Palette) render(s string, style func(lipgloss.Style) lipgloss.Style) string {
	if p.r == nil || s == "" {
		return s
	}
	return style(p.r.NewStyle()).Render(s)
}

func (p Palette) fg(s string, ansi lipgloss.Color) string {
	return p.render(s, func(st lipgloss.Style) lipgloss.Style { return st.Foreground(ansi) })
}

// Bold emphasizes s.
func (p Palette) Bold(s string) string {
	return p.render(s, func(st lipgloss.Style) lipgloss.Style { return st.Bold(true) })
}

// Dim de-emphasizes s.
func (p Palette) Dim(s string) string {
	return p.render(s, func(st lipgloss.Style) lipgloss.Style { return st.Faint(true) })
}

// Red marks failures.
func (p Palette) Red(s string) string { return p.fg(s, "1") }

// Green marks success.
func (p Palette) Green(s string) string { return p.fg(s, "2") }

// Yellow marks warnings.
func (p Palette) Yellow(s string) string { return p.fg(s, "3") }

// Cyan marks links.
func (p Palette) Cyan(s string) string { return p.fg(s, "6") }

// ResolveColor decides whether output to w is colored.
// mode is one of "always", "never", or "auto"; anything else behaves as auto,
// which colors terminals only.
func ResolveColor(mode string, w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	default:
		return IsTerminal(w)
	}
}
