// Package upload validates uploaded documents and materializes them into
// scoped temporary files.
package upload

import (
	"fmt"
	"strings"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// Options controls what the Acceptor lets through.
type Options struct {
	AllowedExtensions []string
	MaxBytes          int64
	StrictKind        bool
	TempDir           string
}

// Acceptor is the entry stage of the pipeline.
type Acceptor struct {
	opts    Options
	allowed map[string]bool
}

// NewAcceptor creates an Acceptor. Extensions are compared case-insensitively
// and may be given with or without a leading dot.
func NewAcceptor(opts Options) *Acceptor {
	allowed := make(map[string]bool, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		allowed[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	return &Acceptor{opts: opts, allowed: allowed}
}

// Validate checks a request without touching the filesystem.
func (a *Acceptor) Validate(req domain.ExtractionRequest) error {
	if req.Kind != domain.KindPDF && req.Kind != domain.KindImage {
		return domain.ValidationError(fmt.Sprintf("unknown file type %q", req.Kind), nil).
			WithReason(domain.ReasonUnknownKind)
	}

	ext := Extension(req.Filename)
	if !a.allowed[ext] {
		return domain.ValidationError(
			fmt.Sprintf("unsupported file extension %q (allowed: %s)", ext, strings.Join(a.opts.AllowedExtensions, ", ")), nil).
			WithReason(domain.ReasonUnsupportedType)
	}

	if len(req.Content) == 0 {
		return domain.ValidationError("uploaded file is empty", nil).WithReason(domain.ReasonEmptyUpload)
	}

	if a.opts.MaxBytes > 0 && int64(len(req.Content)) > a.opts.MaxBytes {
		return domain.ValidationError(
			fmt.Sprintf("uploaded file is %d bytes, limit is %d", len(req.Content), a.opts.MaxBytes), nil).
			WithReason(domain.ReasonUploadTooLarge)
	}

	if a.opts.StrictKind {
		format := DetectFormat(req.Content)
		actual, ok := format.Kind()
		if !ok {
			return domain.ValidationError("file content is neither a PDF nor a supported image", nil).
				WithReason(domain.ReasonKindMismatch)
		}
		if actual != req.Kind {
			return domain.ValidationError(
				fmt.Sprintf("file type %s was selected but the upload is a %s file", req.Kind.Label(), format), nil).
				WithReason(domain.ReasonKindMismatch)
		}
	}

	return nil
}

// Accept validates the request and writes it to a temporary file. The caller
// must Release the returned file.
func (a *Acceptor) Accept(req domain.ExtractionRequest) (*domain.UploadedDocument, *TempFile, error) {
	if err := a.Validate(req); err != nil {
		return nil, nil, err
	}

	tf, err := Acquire(a.opts.TempDir, Extension(req.Filename), req.Content)
	if err != nil {
		return nil, nil, domain.IOError("failed to store upload", err)
	}

	doc := &domain.UploadedDocument{
		Path:     tf.Path,
		Filename: req.Filename,
		Kind:     req.Kind,
		Size:     int64(len(req.Content)),
	}
	return doc, tf, nil
}
