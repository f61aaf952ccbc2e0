//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. A fresh gosseract client is used
// per call, so a Client is safe to share.
type Client struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// New creates a new OCR client.
func New(opts Options) (*Client, error) {
	if opts.Language == "" {
		opts.Language = DefaultOptions().Language
	}
	return &Client{opts: opts, clientFactory: gosseract.NewClient}, nil
}

// Recognize performs OCR on encoded image data (PNG, JPEG, TIFF, ...) and
// returns Tesseract's output untouched.
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := c.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(c.opts.Language); err != nil {
		return "", fmt.Errorf("set language %q: %w", c.opts.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(c.opts.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// Version reports the linked Tesseract version.
func (c *Client) Version() string {
	client := c.clientFactory()
	defer client.Close()
	return client.Version()
}

// Close releases OCR resources.
func (c *Client) Close() error {
	return nil
}
