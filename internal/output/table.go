package output

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Table lays out rows in aligned columns for text output.
// Cells are padded by rune count, and trailing padding is trimmed.
type Table struct {
	headers  []string
	rows     [][]string
	noHeader bool
	sep      string
	indent   string
	palette  Palette
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, sep: "  "}
}

// AddRow appends a row. Rows may have more or fewer cells than headers.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// SetNoHeader hides the header and its underline.
func (t *Table) SetNoHeader(noHeader bool) {
	t.noHeader = noHeader
}

// SetSeparator sets the text between columns.
func (t *Table) SetSeparator(sep string) {
	t.sep = sep
}

// SetIndent prefixes every line with indent.
func (t *Table) SetIndent(indent string) {
	t.indent = indent
}

// SetPalette styles the header row.
func (t *Table) SetPalette(p Palette) {
	t.palette = p
}

// Lines returns the rendered lines without line terminators.
func (t *Table) Lines() []string {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}
	widths := t.widths()

	lines := make([]string, 0, len(t.rows)+2)
	if !t.noHeader && len(t.headers) > 0 {
		rules := make([]string, len(widths))
		for i, n := range widths {
			rules[i] = strings.Repeat("-", n)
		}
		lines = append(lines,
			t.indent+t.palette.Bold(t.join(t.headers, widths)),
			t.indent+strings.Join(rules, t.sep),
		)
	}
	for _, row := range t.rows {
		lines = append(lines, t.indent+t.join(row, widths))
	}
	return lines
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	lines := t.Lines()
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

// widths returns the widest cell of each column in runes.
func (t *Table) widths() []int {
	cols := len(t.headers)
	for _, row := range t.rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	if !t.noHeader {
		measure(t.headers)
	}
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) join(cells []string, widths []int) string {
	var sb strings.Builder
	for i, width := range widths {
		if i > 0 {
			sb.WriteString(t.sep)
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(cell)))
	}
	return strings.TrimRight(sb.String(), " ")
}
