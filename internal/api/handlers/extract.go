// Package handlers provides HTTP handlers for the extractor's web UI and API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/observability"
	"github.com/spherical/tabular-extractor/internal/present"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// formOverhead covers multipart boundaries and the file_type field on top of
// the file itself.
const formOverhead = 1 << 20

// Pipeline runs one extraction.
type Pipeline interface {
	Process(ctx context.Context, req domain.ExtractionRequest, eventCh chan<- domain.StreamEvent) *domain.ExtractionResult
}

// UploadLimits describes what the upload form accepts.
type UploadLimits struct {
	AllowedExtensions []string
	MaxBytes          int64
}

// ExtractHandler serves the upload page and runs extractions.
type ExtractHandler struct {
	logger   *observability.Logger
	pipeline Pipeline
	builder  *present.Builder
	renderer *present.Renderer
	limits   UploadLimits
}

// NewExtractHandler creates a new extract handler.
func NewExtractHandler(logger *observability.Logger, pipeline Pipeline, renderer *present.Renderer, limits UploadLimits) *ExtractHandler {
	return &ExtractHandler{
		logger:   logger,
		pipeline: pipeline,
		builder:  present.NewBuilder(),
		renderer: renderer,
		limits:   limits,
	}
}

// Index handles GET /.
func (h *ExtractHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, http.StatusOK, present.PageView{
		Form: present.NewFormView(h.limits.AllowedExtensions, h.limits.MaxBytes, ""),
	})
}

// Page handles POST /extract and renders the result page.
func (h *ExtractHandler) Page(w http.ResponseWriter, r *http.Request) {
	req, formErr := h.readRequest(w, r)
	page := present.PageView{
		Form: present.NewFormView(h.limits.AllowedExtensions, h.limits.MaxBytes, req.Kind),
	}
	if formErr != nil {
		page.FormError = formErr.Message
		h.writePage(w, statusFor(formErr), page)
		return
	}

	view, err := h.run(r.Context(), req)
	if err != nil {
		page.FormError = "Failed to render the result."
		h.writePage(w, http.StatusInternalServerError, page)
		return
	}

	page.Result = &view
	status := http.StatusOK
	if view.Rejected {
		status = http.StatusBadRequest
	}
	h.writePage(w, status, page)
}

// API handles POST /api/v1/extract and returns the result as JSON.
func (h *ExtractHandler) API(w http.ResponseWriter, r *http.Request) {
	req, formErr := h.readRequest(w, r)
	if formErr != nil {
		h.writeError(w, statusFor(formErr), formErr)
		return
	}

	view, err := h.run(r.Context(), req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, domain.NewError("internal", "failed to build result", err))
		return
	}

	status := http.StatusOK
	if view.Rejected {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, view)
}

func (h *ExtractHandler) run(ctx context.Context, req domain.ExtractionRequest) (present.ResultView, error) {
	result := h.pipeline.Process(ctx, req, nil)

	view, err := h.builder.Build(result)
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Failed to build result view")
		return present.ResultView{}, err
	}
	return view, nil
}

// readRequest parses the multipart form. Content validation is left to the
// pipeline; only a form that cannot be read at all is rejected here.
func (h *ExtractHandler) readRequest(w http.ResponseWriter, r *http.Request) (domain.ExtractionRequest, *domain.DomainError) {
	var req domain.ExtractionRequest

	if h.limits.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, domain.ValidationError(
				fmt.Sprintf("upload exceeds the %d byte limit", h.limits.MaxBytes), err).
				WithReason(domain.ReasonUploadTooLarge)
		}
		return req, domain.ValidationError("request is not a valid multipart form", err)
	}

	kind, err := domain.ParseDocumentKind(r.FormValue("file_type"))
	if err != nil {
		return req, domain.AsDomainError(err, domain.ErrorTypeValidation, "invalid file type")
	}
	req.Kind = kind

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, domain.ValidationError("no file uploaded", err).WithReason(domain.ReasonMissingFile)
	}
	defer file.Close()

	// One byte past the limit is enough for the acceptor to report it.
	reader := io.Reader(file)
	if h.limits.MaxBytes > 0 {
		reader = io.LimitReader(file, h.limits.MaxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return req, domain.IOError("failed to read upload", err).WithReason(domain.ReasonUnreadableSource)
	}

	req.Filename = header.Filename
	req.Content = content
	return req, nil
}

func statusFor(err *domain.DomainError) int {
	switch {
	case err.Reason == domain.ReasonUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case err.Type == domain.ErrorTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ExtractHandler) writePage(w http.ResponseWriter, status int, page present.PageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Page(w, page); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render page")
	}
}

func (h *ExtractHandler) writeError(w http.ResponseWriter, status int, err *domain.DomainError) {
	resp := map[string]string{
		"error":   string(err.Type),
		"message": err.Message,
	}
	if err.Reason != "" {
		resp["reason"] = err.Reason
	}
	if detail := err.Detail(); detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Health returns the liveness handler.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": service})
	}
}
