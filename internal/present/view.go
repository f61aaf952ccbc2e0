// Package present turns extraction results into something a person can read:
// HTML pages for the web UI, JSON for the API, and terminal output for the
// CLI.
package present

import (
	"encoding/base64"
	"html/template"
	"time"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/tables"
)

// NoTablesNotice is shown when a document was processed and held no tables.
const NoTablesNotice = "No tables found in the document."

// JSONMediaType is the content type of every table download.
const JSONMediaType = "application/json"

// Stage names used in error views.
const (
	StageUpload = "upload"
	StageText   = "text"
	StageTables = "tables"
)

// TableView is one table ready for display and download.
type TableView struct {
	Index       int           `json:"index"`
	PageNumber  int           `json:"page_number,omitempty"`
	FileName    string        `json:"file_name"`
	Columns     []string      `json:"columns"`
	Rows        [][]string    `json:"rows"`
	JSON        string        `json:"json"`
	JSONPreview string        `json:"-"`
	GridHTML    template.HTML `json:"-"`
	Href        template.URL  `json:"-"`
}

// ErrorView is a stage failure in user-legible form.
type ErrorView struct {
	Stage   string `json:"stage"`
	Type    string `json:"type"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ResultView is everything the result page and API response show.
type ResultView struct {
	RequestID string      `json:"request_id"`
	Filename  string      `json:"filename"`
	Kind      string      `json:"kind"`
	Pages     int         `json:"pages"`
	Duration  string      `json:"duration"`
	Text      string      `json:"text"`
	Tables    []TableView `json:"tables"`
	Notice    string      `json:"notice,omitempty"`
	Errors    []ErrorView `json:"errors,omitempty"`
	Rejected  bool        `json:"rejected"`
}

// Builder assembles result views.
type Builder struct {
	grid *GridRenderer
}

// NewBuilder creates a view builder.
func NewBuilder() *Builder {
	return &Builder{grid: NewGridRenderer()}
}

// Build converts a pipeline result into a view. The text is passed through
// verbatim; tables keep their order and file names.
func (b *Builder) Build(r *domain.ExtractionResult) (ResultView, error) {
	v := ResultView{
		RequestID: r.RequestID,
		Filename:  r.Filename,
		Kind:      r.Kind.Label(),
		Pages:     r.Pages,
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Text:      r.Text,
		Tables:    make([]TableView, 0, len(r.Tables)),
	}

	if !r.Accepted() {
		v.Rejected = true
		v.Errors = append(v.Errors, errorView(StageUpload, r.Failure))
		return v, nil
	}
	if r.TextFailure != nil {
		v.Errors = append(v.Errors, errorView(StageText, r.TextFailure))
	}
	if r.TableFailure != nil {
		v.Errors = append(v.Errors, errorView(StageTables, r.TableFailure))
	}

	for _, t := range r.Tables {
		grid, err := b.grid.HTML(t.Normalized)
		if err != nil {
			return ResultView{}, err
		}
		v.Tables = append(v.Tables, TableView{
			Index:       t.Index,
			PageNumber:  t.PageNumber,
			FileName:    t.FileName,
			Columns:     t.Normalized.Columns,
			Rows:        t.Normalized.Rows,
			JSON:        t.JSON,
			JSONPreview: tables.PrettyJSON(t.JSON),
			GridHTML:    template.HTML(grid),
			Href:        DataURL(t.JSON),
		})
	}

	if r.NoTables() {
		v.Notice = NoTablesNotice
	}
	return v, nil
}

// DataURL embeds a table's JSON so the browser can save it without another
// request.
func DataURL(content string) template.URL {
	return template.URL("data:" + JSONMediaType + ";base64," + base64.StdEncoding.EncodeToString([]byte(content)))
}

func errorView(stage string, err *domain.DomainError) ErrorView {
	return ErrorView{
		Stage:   stage,
		Type:    string(err.Type),
		Reason:  err.Reason,
		Message: err.Message,
		Detail:  err.Detail(),
	}
}
