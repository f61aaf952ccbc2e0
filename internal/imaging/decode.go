// Package imaging loads raster images and hands them to OCR as PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	// Registered decoders. PNG and JPEG cover the default upload types; the
	// rest let deployments widen ingest.allowed_extensions.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load reads and decodes the image at path. It fails the same way for a
// missing file and for content that is not a decodable image.
func Load(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return Decode(data)
}

// Decode decodes image bytes, returning the detected format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadAsPNG loads the image at path and re-encodes it as PNG.
func LoadAsPNG(path string) ([]byte, image.Rectangle, error) {
	img, _, err := Load(path)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return data, img.Bounds(), nil
}
