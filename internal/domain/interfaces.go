package domain

import "context"

// Rasterizer turns every page of a PDF into an image
type Rasterizer interface {
	// Rasterize returns one image per page, in page order
	Rasterize(ctx context.Context, pdfPath string) ([]PageImage, error)
}

// Recognizer runs OCR over encoded image bytes
type Recognizer interface {
	// Recognize returns the engine's text output verbatim
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TableDetector finds tables across all pages of a PDF
type TableDetector interface {
	// Detect returns tables in order of first appearance; no tables is not an error
	Detect(ctx context.Context, pdfPath string) ([]RawTable, error)
}
