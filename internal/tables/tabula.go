// Package tables detects tables in PDFs and turns them into normalized,
// JSON-serializable grids.
package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// CommandRunner executes an external command and returns its output.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// TabulaConfig locates the tabula-java runtime.
type TabulaConfig struct {
	JavaPath string
	JarPath  string
	Timeout  time.Duration
}

// TabulaDetector finds tables by running the tabula-java CLI over every page.
type TabulaDetector struct {
	cfg TabulaConfig
	run CommandRunner
}

// NewTabulaDetector creates a detector. A nil runner uses ExecRunner.
func NewTabulaDetector(cfg TabulaConfig, run CommandRunner) *TabulaDetector {
	if cfg.JavaPath == "" {
		cfg.JavaPath = "java"
	}
	if run == nil {
		run = ExecRunner
	}
	return &TabulaDetector{cfg: cfg, run: run}
}

// Args returns the java command line used for pdfPath.
func (d *TabulaDetector) Args(pdfPath string) []string {
	return []string{
		"-Dfile.encoding=UTF8",
		"-Djava.awt.headless=true",
		"-jar", d.cfg.JarPath,
		"--pages", "all",
		"--guess",
		"--format", "JSON",
		pdfPath,
	}
}

// Detect returns every table tabula reports, in output order. An empty
// result is a success.
func (d *TabulaDetector) Detect(ctx context.Context, pdfPath string) ([]domain.RawTable, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	stdout, stderr, err := d.run(ctx, d.cfg.JavaPath, d.Args(pdfPath)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.TableDetectionError("table detection did not finish", ctxErr)
		}
		msg := "tabula failed"
		if s := strings.TrimSpace(string(stderr)); s != "" {
			msg = fmt.Sprintf("tabula failed: %s", firstLine(s))
		}
		return nil, domain.TableDetectionError(msg, err)
	}

	tables, err := ParseTabulaJSON(stdout)
	if err != nil {
		return nil, domain.TableDetectionError("unreadable tabula output", err)
	}
	return tables, nil
}

type tabulaTable struct {
	ExtractionMethod string         `json:"extraction_method"`
	PageNumber       int            `json:"page_number"`
	Data             [][]tabulaCell `json:"data"`
}

type tabulaCell struct {
	Text string `json:"text"`
}

// ParseTabulaJSON decodes tabula-java's JSON format into raw tables.
// Degenerate tables (no rows or empty rows) are kept.
func ParseTabulaJSON(data []byte) ([]domain.RawTable, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.RawTable{}, nil
	}

	var parsed []tabulaTable
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, fmt.Errorf("decode tabula json: %w", err)
	}

	tables := make([]domain.RawTable, 0, len(parsed))
	for _, pt := range parsed {
		cells := make([][]string, 0, len(pt.Data))
		for _, row := range pt.Data {
			texts := make([]string, len(row))
			for i, cell := range row {
				texts[i] = cell.Text
			}
			cells = append(cells, texts)
		}
		tables = append(tables, domain.RawTable{
			PageNumber:       pt.PageNumber,
			ExtractionMethod: pt.ExtractionMethod,
			Cells:            cells,
		})
	}
	return tables, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
