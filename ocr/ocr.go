// Package ocr recognises text in the images of scanned pages.
//
// The engine is Tesseract, reached through gosseract, and is only compiled
// in with the "ocr" build tag:
//
//	go build -tags ocr ./cmd/pdftext
//
// Without the tag New returns ErrOCRNotEnabled and callers fall back to the
// text found in content streams. Building with the tag requires the
// Tesseract and Leptonica development libraries:
//
//	apt-get install libtesseract-dev libleptonica-dev tesseract-ocr-eng
package ocr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOCRNotEnabled is returned by New when the binary was built without
// the ocr tag.
var ErrOCRNotEnabled = errors.New("ocr support not enabled; rebuild with -tags ocr")

// PageSegMode selects how Tesseract segments an image. The values match
// Tesseract's own numbering.
type PageSegMode int

const (
	PSMAuto        PageSegMode = 3  // fully automatic, the Tesseract default
	PSMSingleBlock PageSegMode = 6  // one uniform block of text
	PSMSparseText  PageSegMode = 11 // as much text as possible, in no order
)

// Config configures a Client. The zero value recognises English with
// automatic segmentation.
type Config struct {
	Languages []string // Tesseract language codes such as "eng" or "chi_sim"
	Mode      PageSegMode
}

func (c Config) languages() []string {
	if len(c.Languages) == 0 {
		return []string{"eng"}
	}
	return c.Languages
}

func (c Config) mode() PageSegMode {
	if c.Mode == 0 {
		return PSMAuto
	}
	return c.Mode
}

// Recognizer turns one encoded image (PNG, JPEG, TIFF) into text.
type Recognizer interface {
	Recognize(image []byte) (string, error)
}

// RecognizePage runs rec over the images of one page in order and joins the
// non-empty results with newlines. An error names the failing image.
func RecognizePage(rec Recognizer, images [][]byte) (string, error) {
	var parts []string
	for i, img := range images {
		s, err := rec.Recognize(img)
		if err != nil {
			return strings.Join(parts, "\n"), fmt.Errorf("image %d: %w", i+1, err)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}
