// Package output writes extracted page text as plain text or as a small
// HTML document, in any character set golang.org/x/text knows.
package output

import (
	"fmt"
	"io"
)

// Metadata is the document information written into HTML heads.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// Sink receives the text of each page in order, between Begin and End.
type Sink interface {
	Begin(meta Metadata) error
	WritePage(number int, text string) error
	End() error
}

// TextSink writes each page's text followed by a newline.
type TextSink struct {
	w io.Writer
}

// NewTextSink returns a sink writing plain text to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Begin does nothing; plain text has no header.
func (s *TextSink) Begin(Metadata) error { return nil }

// WritePage writes text and a newline.
func (s *TextSink) WritePage(number int, text string) error {
	if _, err := io.WriteString(s.w, text+"\n"); err != nil {
		return fmt.Errorf("page %d: %w", number, err)
	}
	return nil
}

// End does nothing.
func (s *TextSink) End() error { return nil }
