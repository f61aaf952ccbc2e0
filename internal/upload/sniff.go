package upload

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// Format is the content type recognized from magic bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
	FormatWEBP
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatGIF:
		return "GIF"
	case FormatBMP:
		return "BMP"
	case FormatTIFF:
		return "TIFF"
	case FormatWEBP:
		return "WEBP"
	default:
		return "Unknown"
	}
}

// Kind maps a format onto the document kind it belongs to.
func (f Format) Kind() (domain.DocumentKind, bool) {
	switch f {
	case FormatPDF:
		return domain.KindPDF, true
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWEBP:
		return domain.KindImage, true
	default:
		return "", false
	}
}

var (
	magicPDF  = []byte("%PDF-")
	magicPNG  = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicGIF7 = []byte("GIF87a")
	magicGIF9 = []byte("GIF89a")
	magicBMP  = []byte("BM")
	magicTIFL = []byte("II*\x00")
	magicTIFB = []byte("MM\x00*")
)

// pdfHeaderWindow is how far into the file a PDF header may start; some
// producers prepend junk before %PDF-.
const pdfHeaderWindow = 1024

// DetectFormat checks magic bytes to determine the content format.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return FormatPNG
	case bytes.HasPrefix(data, magicJPEG):
		return FormatJPEG
	case bytes.HasPrefix(data, magicGIF7), bytes.HasPrefix(data, magicGIF9):
		return FormatGIF
	case bytes.HasPrefix(data, magicTIFL), bytes.HasPrefix(data, magicTIFB):
		return FormatTIFF
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWEBP
	case bytes.HasPrefix(data, magicBMP) && len(data) >= 14:
		return FormatBMP
	}

	window := data
	if len(window) > pdfHeaderWindow {
		window = window[:pdfHeaderWindow]
	}
	if bytes.Contains(window, magicPDF) {
		return FormatPDF
	}

	return FormatUnknown
}

// Extension returns the lowercase extension of filename without the dot.
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
