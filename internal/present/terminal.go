package present

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Terminal prints result views for the CLI.
type Terminal struct {
	out io.Writer

	heading *color.Color
	warn    *color.Color
	fail    *color.Color
	dim     *color.Color
}

// NewTerminal creates a terminal presenter writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:     out,
		heading: color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
}

// Render prints the text, each table as an aligned grid, and any stage
// errors.
func (t *Terminal) Render(v ResultView) {
	for _, e := range v.Errors {
		t.fail.Fprintf(t.out, "✗ %s failed (%s", e.Stage, e.Type)
		if e.Reason != "" {
			t.fail.Fprintf(t.out, ": %s", e.Reason)
		}
		t.fail.Fprintf(t.out, "): %s\n", e.Message)
		if e.Detail != "" {
			t.dim.Fprintf(t.out, "  %s\n", e.Detail)
		}
	}
	if v.Rejected {
		return
	}

	t.heading.Fprintln(t.out, "Extracted Text")
	fmt.Fprintln(t.out, v.Text)

	t.heading.Fprintln(t.out, "Extracted Tables")
	if v.Notice != "" {
		t.warn.Fprintf(t.out, "⚠ %s\n", v.Notice)
		return
	}
	for _, tv := range v.Tables {
		label := fmt.Sprintf("Table %d", tv.Index)
		if tv.PageNumber > 0 {
			label += fmt.Sprintf(" (page %d)", tv.PageNumber)
		}
		t.heading.Fprintln(t.out, label)
		Grid(t.out, tv.Columns, tv.Rows)
		fmt.Fprintln(t.out)
	}
}

// Grid writes rows under headers as tab-aligned columns.
func Grid(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 {
		fmt.Fprintln(w, "(empty table)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(sanitize(headers), "\t"))

	separator := make([]string, len(headers))
	for i, h := range headers {
		separator[i] = strings.Repeat("-", max(len(h), 1))
	}
	fmt.Fprintln(tw, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(sanitize(row), "\t"))
	}
	_ = tw.Flush()
}

func sanitize(cells []string) []string {
	out := make([]string, len(cells))
	r := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	for i, c := range cells {
		out[i] = r.Replace(c)
	}
	return out
}

// WriteTables saves every table's JSON under dir using its download name and
// returns the written paths in table order.
func WriteTables(dir string, v ResultView) ([]string, error) {
	if len(v.Tables) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(v.Tables))
	for _, tv := range v.Tables {
		path := filepath.Join(dir, tv.FileName)
		if err := os.WriteFile(path, []byte(tv.JSON), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", tv.FileName, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
