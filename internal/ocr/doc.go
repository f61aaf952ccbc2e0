// Package ocr runs Tesseract over page and upload images.
//
// The Tesseract-backed client is compiled in with the "ocr" build tag since
// gosseract needs cgo and the Tesseract/Leptonica headers:
//
//	go build -tags ocr ./cmd/tabular-extractor
//
// On Ubuntu/Debian the headers come from:
//
//	apt-get install libtesseract-dev libleptonica-dev tesseract-ocr-eng
//
// Without the tag every Recognize call fails with ErrOCRNotEnabled.
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Options configures the Tesseract client.
type Options struct {
	Language    string
	PageSegMode int
}

// DefaultOptions returns English with fully automatic page segmentation.
func DefaultOptions() Options {
	return Options{Language: "eng", PageSegMode: 3}
}
