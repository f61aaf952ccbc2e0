package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentKind is the user-declared type of an upload
type DocumentKind string

const (
	KindPDF   DocumentKind = "pdf"
	KindImage DocumentKind = "image"
)

// ParseDocumentKind accepts the labels shown in the UI ("PDF", "Image") as
// well as their lowercase forms.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return KindPDF, nil
	case "image":
		return KindImage, nil
	default:
		return "", ValidationError(fmt.Sprintf("unknown file type %q (expected PDF or Image)", s), nil).
			WithReason(ReasonUnknownKind)
	}
}

// Label returns the display name of the kind.
func (k DocumentKind) Label() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindImage:
		return "Image"
	default:
		return string(k)
	}
}

// ExtractionRequest carries everything one pipeline run needs. It replaces
// any form state held by the UI layer.
type ExtractionRequest struct {
	Filename string
	Kind     DocumentKind
	Content  []byte
}

// UploadedDocument is the materialized upload, valid for one pipeline run
type UploadedDocument struct {
	Path     string
	Filename string
	Kind     DocumentKind
	Size     int64
}

// PageImage represents a single rasterized PDF page
type PageImage struct {
	PageNumber int
	Data       []byte // PNG encoded
	Width      int
	Height     int
}

// RawTable is a table grid as reported by the detector. Rows may be ragged.
type RawTable struct {
	PageNumber       int        `json:"page_number,omitempty"`
	ExtractionMethod string     `json:"extraction_method,omitempty"`
	Cells            [][]string `json:"cells"`
}

// RowCount returns the number of detected rows
func (t RawTable) RowCount() int {
	return len(t.Cells)
}

// ColCount returns the width of the widest row
func (t RawTable) ColCount() int {
	cols := 0
	for _, row := range t.Cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// NormalizedTable is a rectangular table with one label per column
type NormalizedTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FormattedTable pairs a normalized table with its serialized form
type FormattedTable struct {
	Index      int             `json:"index"` // 1-based
	PageNumber int             `json:"page_number,omitempty"`
	Normalized NormalizedTable `json:"normalized"`
	JSON       string          `json:"json"`
	FileName   string          `json:"file_name"`
}

// TableFileName returns the download name for the table at a 1-based index.
func TableFileName(index int) string {
	return fmt.Sprintf("table_%d.json", index)
}

// ExtractionResult is the outcome of one pipeline run. Each stage reports
// either its value or a typed failure.
type ExtractionResult struct {
	RequestID string        `json:"request_id"`
	Filename  string        `json:"filename"`
	Kind      DocumentKind  `json:"kind"`
	Pages     int           `json:"pages"`
	Duration  time.Duration `json:"duration"`

	// Failure is set when the upload was rejected and no stage ran.
	Failure *DomainError `json:"failure,omitempty"`

	Text        string       `json:"text"`
	TextFailure *DomainError `json:"text_failure,omitempty"`

	Tables       []FormattedTable `json:"tables"`
	TableFailure *DomainError     `json:"table_failure,omitempty"`
}

// Accepted reports whether the upload passed validation.
func (r *ExtractionResult) Accepted() bool {
	return r.Failure == nil
}

// NoTables reports whether the table stage completed with nothing found.
func (r *ExtractionResult) NoTables() bool {
	return r.Accepted() && r.TableFailure == nil && len(r.Tables) == 0
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart          EventType = "start"
	EventPageProcessing EventType = "page_processing"
	EventPageComplete   EventType = "page_complete"
	EventTablesDetected EventType = "tables_detected"
	EventError          EventType = "error"
	EventComplete       EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	PageNumber int         `json:"page_number,omitempty"`
	TotalPages int         `json:"total_pages,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}
