package output_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deeplink/internal/output"
)

type walletView struct {
	Name string `json:"name"`
}

func (v walletView) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "wallet %s\n", v.Name)
	return err
}

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestFormatter_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON, &buf)

	require.NoError(t, f.Print(walletView{Name: "solflare"}))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "solflare", result["name"])
	assert.Contains(t, buf.String(), "\n  \"name\"")
}

func TestFormatter_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"renderer", walletView{Name: "backpack"}, "wallet backpack\n"},
		{"string", "hello world", "hello world\n"},
		{"stringer", stringer{}, "from stringer\n"},
		{"other", 42, "42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			f := output.NewFormatter(output.FormatText, &buf)
			require.NoError(t, f.Print(tt.v))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatter_PrintfPrintln(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatText, &buf)

	require.NoError(t, f.Printf("hello %s\n", "world"))
	require.NoError(t, f.Println("next", "line"))
	assert.Equal(t, "hello world\nnext line\n", buf.String())
	assert.Equal(t, &buf, f.Writer())
	assert.Equal(t, output.FormatText, f.Format())
	assert.False(t, f.IsJSON())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected output.Format
	}{
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{" text ", output.FormatText},
		{"auto", output.FormatAuto},
		{"", output.FormatAuto},
		{"yaml", output.FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, output.ParseFormat(tt.input))
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	assert.Equal(t, output.FormatText, output.DetectFormat(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatAuto))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, output.FormatJSON, output.DetectFormat(f, output.FormatAuto), "regular files are not terminals")
	assert.False(t, output.IsTerminal(nil))
}

func TestTable(t *testing.T) {
	t.Parallel()
	table := output.NewTable("WALLET", "ACTIONS")
	table.AddRow("phantom", "connect, signMessage, browse")
	table.AddRow("trustWallet", "connect")

	lines := strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "WALLET       ACTIONS", lines[0])
	assert.Equal(t, "-----------  ----------------------------", lines[1])
	assert.Equal(t, "phantom      connect, signMessage, browse", lines[2])
	assert.Equal(t, "trustWallet  connect", lines[3], "no trailing padding")
	assert.Equal(t, 2, table.Len())
}

func TestTable_Variants(t *testing.T) {
	t.Parallel()

	empty := output.NewTable()
	assert.Empty(t, empty.String())

	noHeader := output.NewTable("A", "B")
	noHeader.SetNoHeader(true)
	noHeader.SetSeparator(" | ")
	noHeader.AddRow("x", "y")
	noHeader.AddRow("long", "", "extra")
	assert.Equal(t, "x    | y |\nlong |   | extra\n", noHeader.String())

	unicode := output.NewTable("NAME", "OK")
	unicode.AddRow("Trust ✓", "yes")
	assert.Contains(t, unicode.String(), "Trust ✓  yes")
}

func TestTable_IndentAndPalette(t *testing.T) {
	t.Parallel()
	table := output.NewTable("KEY", "VALUE")
	table.SetIndent("  ")
	table.SetPalette(output.NewPalette(true))
	table.AddRow("app.cluster", "devnet")

	lines := table.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "  \x1b[1mKEY          VALUE\x1b[0m", lines[0])
	assert.Equal(t, "  -----------  ------", lines[1])
	assert.Equal(t, "  app.cluster  devnet", lines[2])
	assert.Nil(t, output.NewTable().Lines())
}

func TestPalette(t *testing.T) {
	t.Parallel()

	plain := output.NewPalette(false)
	assert.False(t, plain.Enabled())
	assert.Equal(t, "ok", plain.Green("ok"))
	assert.Equal(t, "ok", output.Palette{}.Bold("ok"))

	colored := output.NewPalette(true)
	assert.True(t, colored.Enabled())
	assert.Equal(t, "\x1b[31mfail\x1b[0m", colored.Red("fail"))
	assert.Equal(t, "\x1b[33mwarn\x1b[0m", colored.Yellow("warn"))
	assert.Equal(t, "\x1b[2mdim\x1b[0m", colored.Dim("dim"))
	assert.Equal(t, "\x1b[36mlink\x1b[0m", colored.Cyan("link"))
	assert.Empty(t, colored.Bold(""))
}

func TestResolveColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	assert.True(t, output.ResolveColor("always", &buf))
	assert.False(t, output.ResolveColor("never", &buf))
	assert.False(t, output.ResolveColor("auto", &buf), "buffers are not terminals")
	assert.False(t, output.ResolveColor("", &buf))
}

func TestFormatter_Color(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	text := output.NewFormatter(output.FormatText, &buf)
	assert.False(t, text.Palette().Enabled())
	text.SetColor(true)
	assert.True(t, text.Palette().Enabled())

	var other bytes.Buffer
	copied := text.To(&other)
	assert.Equal(t, &other, copied.Writer())
	assert.True(t, copied.Palette().Enabled())
	assert.Equal(t, output.FormatText, copied.Format())

	js := output.NewFormatter(output.FormatJSON, &buf)
	js.SetColor(true)
	assert.False(t, js.Palette().Enabled(), "json is never colored")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.WriteJSON(&buf, map[string]int{"pending": 1}))
	assert.Equal(t, "{\n  \"pending\": 1\n}\n", buf.String())
}
