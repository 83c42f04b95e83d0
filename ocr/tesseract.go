//go:build ocr

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract engine. It is not safe for concurrent use.
type Client struct {
	client *gosseract.Client
}

// New starts a Tesseract client configured by cfg. Close releases it.
func New(cfg Config) (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.languages()...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.mode())); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases the engine. It is safe on a nil or closed client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Recognize returns the text Tesseract finds in image, trimmed.
func (c *Client) Recognize(image []byte) (string, error) {
	if err := c.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
