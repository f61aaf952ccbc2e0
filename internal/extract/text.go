package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/imaging"
	"github.com/spherical/tabular-extractor/internal/observability"
)

// PageFunc is told when OCR of a page starts and finishes.
type PageFunc func(evt domain.EventType, page, total int)

// ImageLoader reads an image file and returns it PNG-encoded.
type ImageLoader func(path string) ([]byte, error)

// LoadPNG is the default ImageLoader.
func LoadPNG(path string) ([]byte, error) {
	data, _, err := imaging.LoadAsPNG(path)
	return data, err
}

// TextExtractor turns a document into plain text with OCR
type TextExtractor struct {
	rasterizer domain.Rasterizer
	recognizer domain.Recognizer
	loadImage  ImageLoader
	metrics    *observability.Metrics
}

// NewTextExtractor creates a text extractor. A nil loader uses LoadPNG.
func NewTextExtractor(rasterizer domain.Rasterizer, recognizer domain.Recognizer, loader ImageLoader, metrics *observability.Metrics) *TextExtractor {
	if loader == nil {
		loader = LoadPNG
	}
	return &TextExtractor{
		rasterizer: rasterizer,
		recognizer: recognizer,
		loadImage:  loader,
		metrics:    metrics,
	}
}

// Extract returns the OCR text of the document at path and the number of
// pages recognized. The text is the engine output verbatim; for a PDF the
// pages are joined in order with nothing in between.
func (t *TextExtractor) Extract(ctx context.Context, path string, kind domain.DocumentKind, onPage PageFunc) (string, int, error) {
	switch kind {
	case domain.KindImage:
		return t.extractImage(ctx, path, onPage)
	case domain.KindPDF:
		return t.extractPDF(ctx, path, onPage)
	default:
		return "", 0, domain.ValidationError(fmt.Sprintf("unknown file type %q", kind), nil).
			WithReason(domain.ReasonUnknownKind)
	}
}

func (t *TextExtractor) extractImage(ctx context.Context, path string, onPage PageFunc) (string, int, error) {
	data, err := t.loadImage(path)
	if err != nil {
		return "", 0, domain.ConversionError("failed to decode image", err).
			WithReason(domain.ReasonUnreadableSource)
	}

	notify(onPage, domain.EventPageProcessing, 1, 1)
	text, err := t.recognize(ctx, data, 1)
	if err != nil {
		return "", 0, err
	}
	notify(onPage, domain.EventPageComplete, 1, 1)

	return text, 1, nil
}

func (t *TextExtractor) extractPDF(ctx context.Context, path string, onPage PageFunc) (string, int, error) {
	pages, err := t.rasterizer.Rasterize(ctx, path)
	if err != nil {
		return "", 0, domain.AsDomainError(err, domain.ErrorTypeConversion, "failed to rasterize PDF")
	}

	var text strings.Builder
	for i, page := range pages {
		select {
		case <-ctx.Done():
			return "", 0, domain.OCRError(fmt.Sprintf("stopped before page %d", page.PageNumber), ctx.Err())
		default:
		}

		notify(onPage, domain.EventPageProcessing, page.PageNumber, len(pages))
		pageText, err := t.recognize(ctx, page.Data, page.PageNumber)
		if err != nil {
			return "", i, err
		}
		text.WriteString(pageText)
		notify(onPage, domain.EventPageComplete, page.PageNumber, len(pages))
	}

	return text.String(), len(pages), nil
}

func (t *TextExtractor) recognize(ctx context.Context, image []byte, page int) (string, error) {
	text, err := t.recognizer.Recognize(ctx, image)
	if err != nil {
		return "", domain.AsDomainError(err, domain.ErrorTypeOCR, fmt.Sprintf("OCR failed on page %d", page))
	}
	t.metrics.PageRecognized()
	return text, nil
}

func notify(fn PageFunc, evt domain.EventType, page, total int) {
	if fn != nil {
		fn(evt, page, total)
	}
}
