package pdftext

import (
	"fmt"
	"strings"
)

// WarningKind classifies a Warning.
type WarningKind int

const (
	// MissingCMap: an Identity-H font without ToUnicode had no CMap source;
	// its text is missing from the page.
	MissingCMap WarningKind = iota
	// ContentError: the page's content stream could not be parsed to the
	// end; text up to the error was kept.
	ContentError
	// OCRFailed: OCR was requested but could not run or failed on a page.
	OCRFailed
)

func (k WarningKind) String() string {
	switch k {
	case MissingCMap:
		return "missing cmap"
	case ContentError:
		return "content error"
	case OCRFailed:
		return "ocr failed"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a problem that did not stop extraction.
type Warning struct {
	Page    int // 1-based; 0 for document-level warnings
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	if w.Page == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("page %d: %s: %s", w.Page, w.Kind, w.Message)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
