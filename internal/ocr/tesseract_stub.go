//go:build !ocr

package ocr

import "context"

// Client is a stub OCR client used when the "ocr" build tag is not set.
type Client struct {
	opts Options
}

// New returns a client whose Recognize always fails with ErrOCRNotEnabled.
// Construction succeeds so that the service can still start and report the
// failure per request.
func New(opts Options) (*Client, error) {
	return &Client{opts: opts}, nil
}

// Recognize returns ErrOCRNotEnabled.
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Version reports that no engine is linked.
func (c *Client) Version() string {
	return "disabled"
}

// Close is a no-op for the stub client.
func (c *Client) Close() error {
	return nil
}
