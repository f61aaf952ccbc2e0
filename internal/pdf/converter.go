package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/imaging"
)

// Converter implements PDF page rasterization using go-fitz
type Converter struct {
	dpi       int
	validator *Validator
}

// NewConverter creates a new PDF converter. A dpi of zero renders at the
// MuPDF binding's default resolution.
func NewConverter(dpi int) *Converter {
	return &Converter{
		dpi:       dpi,
		validator: NewValidator(),
	}
}

// Rasterize converts every page of a PDF into a PNG image, in page order
func (c *Converter) Rasterize(ctx context.Context, pdfPath string) ([]domain.PageImage, error) {
	if err := c.validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ConversionError("PDF has no pages", nil)
	}

	images := make([]domain.PageImage, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := c.render(doc, pageNum)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("failed to rasterize page %d", pageNum+1), err)
		}

		data, err := imaging.EncodePNG(img)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("failed to encode page %d", pageNum+1), err)
		}

		bounds := img.Bounds()
		images = append(images, domain.PageImage{
			PageNumber: pageNum + 1,
			Data:       data,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}

	return images, nil
}

func (c *Converter) render(doc *fitz.Document, pageNum int) (image.Image, error) {
	if c.dpi > 0 {
		return doc.ImageDPI(pageNum, float64(c.dpi))
	}
	return doc.Image(pageNum)
}
