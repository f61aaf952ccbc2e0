package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/observability"
	"github.com/spherical/tabular-extractor/internal/present"
	"github.com/spherical/tabular-extractor/internal/tables"
)

type fakePipeline struct {
	result *domain.ExtractionResult
	got    []domain.ExtractionRequest
}

func (f *fakePipeline) Process(ctx context.Context, req domain.ExtractionRequest, eventCh chan<- domain.StreamEvent) *domain.ExtractionResult {
	f.got = append(f.got, req)
	r := *f.result
	r.Filename = req.Filename
	r.Kind = req.Kind
	return &r
}

func newHandler(t *testing.T, p Pipeline) *ExtractHandler {
	t.Helper()
	renderer, err := present.NewRenderer()
	require.NoError(t, err)
	return NewExtractHandler(observability.Nop(), p, renderer, UploadLimits{
		AllowedExtensions: []string{"pdf", "png", "jpg"},
		MaxBytes:          1024,
	})
}

func multipartBody(t *testing.T, fileType, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileType != "" {
		require.NoError(t, mw.WriteField("file_type", fileType))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postForm(t *testing.T, handler http.HandlerFunc, path, fileType, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fileType, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func withTables(t *testing.T, raws ...domain.RawTable) *domain.ExtractionResult {
	t.Helper()
	formatted, err := tables.NewFormatter(tables.HeaderFirstRow, tables.OrientColumns).Format(raws)
	require.NoError(t, err)
	return &domain.ExtractionResult{RequestID: "req-1", Pages: 2, Text: "Name Age\nAnn 30\n", Tables: formatted}
}

func countDownloads(t *testing.T, page string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var names []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "download" {
					names = append(names, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return names
}

func TestIndex(t *testing.T) {
	h := newHandler(t, &fakePipeline{})
	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `accept=".pdf,.png,.jpg"`)
	assert.Contains(t, w.Body.String(), `name="file_type"`)
	assert.Empty(t, countDownloads(t, w.Body.String()))
}

func TestPage_RendersDownloads(t *testing.T) {
	p := &fakePipeline{result: withTables(t,
		domain.RawTable{Cells: [][]string{{"Name", "Age"}, {"Ann", "30"}, {"Bob", "41"}}},
		domain.RawTable{Cells: [][]string{{"k"}, {"v"}}},
	)}
	h := newHandler(t, p)

	w := postForm(t, h.Page, "/extract", "PDF", "report.pdf", []byte("%PDF-1.4"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"table_1.json", "table_2.json"}, countDownloads(t, w.Body.String()))
	assert.NotContains(t, w.Body.String(), present.NoTablesNotice)

	require.Len(t, p.got, 1)
	assert.Equal(t, domain.ExtractionRequest{
		Filename: "report.pdf",
		Kind:     domain.KindPDF,
		Content:  []byte("%PDF-1.4"),
	}, p.got[0])
}

func TestPage_NoTablesNotice(t *testing.T) {
	p := &fakePipeline{result: &domain.ExtractionResult{Text: "INVOICE #123", Tables: []domain.FormattedTable{}}}
	h := newHandler(t, p)

	w := postForm(t, h.Page, "/extract", "Image", "invoice.jpg", []byte{0xFF, 0xD8, 0xFF})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), present.NoTablesNotice)
	assert.Contains(t, w.Body.String(), "INVOICE #123")
	assert.Empty(t, countDownloads(t, w.Body.String()))
}

func TestPage_FormErrors(t *testing.T) {
	h := newHandler(t, &fakePipeline{})

	tests := []struct {
		name     string
		fileType string
		filename string
		message  string
	}{
		{"missing file", "PDF", "", "no file uploaded"},
		{"unknown kind", "Spreadsheet", "a.pdf", "unknown file type"},
		{"missing kind", "", "a.pdf", "unknown file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(t, h.Page, "/extract", tt.fileType, tt.filename, []byte("x"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), `id="form-error"`)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.Page(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPage_Rejected(t *testing.T) {
	p := &fakePipeline{result: &domain.ExtractionResult{
		Failure: domain.ValidationError("file type PDF was selected but the upload is a JPEG file", nil).
			WithReason(domain.ReasonKindMismatch),
	}}
	h := newHandler(t, p)

	w := postForm(t, h.Page, "/extract", "PDF", "scan.pdf", []byte{0xFF, 0xD8, 0xFF})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "kind_mismatch")
	assert.NotContains(t, w.Body.String(), present.NoTablesNotice)
}

func TestAPI_Success(t *testing.T) {
	p := &fakePipeline{result: withTables(t,
		domain.RawTable{Cells: [][]string{{"Name", "Age"}, {"Ann", "30"}, {"Bob", "41"}, {"Cy", "27"}}},
	)}
	h := newHandler(t, p)

	w := postForm(t, h.API, "/api/v1/extract", "pdf", "report.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp present.ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "PDF", resp.Kind)
	assert.Empty(t, resp.Notice)
	require.Len(t, resp.Tables, 1)

	table := resp.Tables[0]
	assert.Equal(t, "table_1.json", table.FileName)
	assert.Equal(t, []string{"Name", "Age"}, table.Columns)
	assert.Len(t, table.Rows, 3)

	decoded, err := tables.DecodeJSON(table.JSON, tables.OrientColumns)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, decoded.Columns)
	assert.Equal(t, table.Rows, decoded.Rows)
}

func TestAPI_StageErrors(t *testing.T) {
	p := &fakePipeline{result: &domain.ExtractionResult{
		Tables:       []domain.FormattedTable{},
		TextFailure:  domain.OCRError("OCR failed on page 1", assert.AnError),
		TableFailure: domain.TableDetectionError("tabula failed", nil),
	}}
	h := newHandler(t, p)

	w := postForm(t, h.API, "/api/v1/extract", "pdf", "report.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp present.ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, present.StageText, resp.Errors[0].Stage)
	assert.Equal(t, "ocr", resp.Errors[0].Type)
	assert.Equal(t, present.StageTables, resp.Errors[1].Stage)
	assert.Empty(t, resp.Notice)
}

func TestAPI_FormError(t *testing.T) {
	h := newHandler(t, &fakePipeline{})

	w := postForm(t, h.API, "/api/v1/extract", "pdf", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp["error"])
	assert.Equal(t, domain.ReasonMissingFile, resp["reason"])
}

func TestAPI_OversizedBody(t *testing.T) {
	h := newHandler(t, &fakePipeline{})

	w := postForm(t, h.API, "/api/v1/extract", "pdf", "big.pdf", bytes.Repeat([]byte("a"), 3<<20))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.ReasonUploadTooLarge, resp["reason"])
}

func TestAPI_TruncatesAtLimit(t *testing.T) {
	p := &fakePipeline{result: &domain.ExtractionResult{Tables: []domain.FormattedTable{}}}
	h := newHandler(t, p)

	postForm(t, h.API, "/api/v1/extract", "pdf", "big.pdf", bytes.Repeat([]byte("a"), 4096))
	require.Len(t, p.got, 1)
	assert.Len(t, p.got[0].Content, 1025, "one byte past the limit reaches the acceptor")
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health("tabular-extractor")(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"tabular-extractor"}`, w.Body.String())
}
