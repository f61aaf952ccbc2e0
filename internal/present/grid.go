package present

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// GridRenderer turns normalized tables into HTML grids by way of a GFM
// markdown table.
type GridRenderer struct {
	md goldmark.Markdown
}

// NewGridRenderer creates a renderer with the GFM table extension enabled.
// Raw HTML in cells is never passed through.
func NewGridRenderer() *GridRenderer {
	return &GridRenderer{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Markdown writes t as a GFM pipe table. Tables without columns have no
// markdown form and yield "".
func Markdown(t domain.NormalizedTable) string {
	if len(t.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow(&b, t.Columns)

	b.WriteByte('|')
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')

	for _, row := range t.Rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteByte('|')
	for _, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(escapeCell(cell))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

// escapeCell keeps a cell on one line and backslash-escapes ASCII
// punctuation so the text renders literally.
func escapeCell(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x80 && isPunct(byte(r)):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

// HTML renders t as an HTML table.
func (g *GridRenderer) HTML(t domain.NormalizedTable) (string, error) {
	source := Markdown(t)
	if source == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := g.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return buf.String(), nil
}
