// Package output renders deeplink command results as text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects how results are rendered.
type Format string

// Supported formats. FormatAuto resolves to text on a terminal and JSON otherwise.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// TextRenderer is implemented by results with their own text layout.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Formatter writes command results in one format.
type Formatter struct {
	format  Format
	w       io.Writer
	palette Palette
}

// NewFormatter returns an uncolored formatter writing to w.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format, w: w}
}

// Format returns the output format.
func (f *Formatter) Format() Format {
	return f.format
}

// Writer returns the destination writer.
func (f *Formatter) Writer() io.Writer {
	return f.w
}

// IsJSON reports whether results are written as JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// SetColor enables or disables colored text output. JSON is never colored.
func (f *Formatter) SetColor(on bool) {
	f.palette = NewPalette(on && f.format != FormatJSON)
}

// Palette returns the palette text output should be styled with.
func (f *Formatter) Palette() Palette {
	return f.palette
}

// To returns a formatter with the same format and colors writing to w.
func (f *Formatter) To(w io.Writer) *Formatter {
	return &Formatter{format: f.format, w: w, palette: f.palette}
}

// Messenger returns a messenger writing status lines to out and warnings to errOut.
func (f *Formatter) Messenger(out, errOut io.Writer) *Messenger {
	return &Messenger{Out: out, Err: errOut, Palette: f.palette}
}

// Print writes v as indented JSON, or as text through its TextRenderer,
// fmt.Stringer, or default formatting.
func (f *Formatter) Print(v any) error {
	if f.format == FormatJSON {
		return WriteJSON(f.w, v)
	}

	var err error
	switch val := v.(type) {
	case TextRenderer:
		err = val.RenderText(f.w)
	case string:
		_, err = fmt.Fprintln(f.w, val)
	case fmt.Stringer:
		_, err = fmt.Fprintln(f.w, val.String())
	default:
		_, err = fmt.Fprintf(f.w, "%v\n", val)
	}
	return err
}

// Printf writes formatted text.
func (f *Formatter) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(f.w, format, args...)
	return err
}

// Println writes a line of text.
func (f *Formatter) Println(args ...any) error {
	_, err := fmt.Fprintln(f.w, args...)
	return err
}

// WriteJSON encodes v to w as JSON indented by two spaces.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.IsTerminal
}

// DetectFormat resolves FormatAuto against w: text for a terminal, JSON otherwise.
// Explicit formats are returned unchanged.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}
	if IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// ParseFormat maps a configuration or flag value to a Format.
// Unknown values fall back to FormatAuto.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatAuto
	}
}
