//go:build !ocr

package ocr

// Client stands in for the Tesseract client in builds without the ocr tag.
type Client struct{}

// New always fails with ErrOCRNotEnabled.
func New(Config) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing. It is safe on a nil client.
func (c *Client) Close() error { return nil }

// Recognize always fails with ErrOCRNotEnabled.
func (c *Client) Recognize([]byte) (string, error) {
	return "", ErrOCRNotEnabled
}
