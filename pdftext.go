// Package pdftext extracts the text of PDF documents, repairing fonts whose
// glyph codes carry no Unicode mapping on the way.
//
// Basic usage:
//
//	text, warnings, err := pdftext.Open("document.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdftext.FormatWarnings(warnings))
//	}
//
// With options:
//
//	warnings, err := pdftext.Open("https://example.com/report.pdf").
//	    PageRange(2, 5).
//	    SortByPosition().
//	    CMapRoot("/usr/share/pdftext/cmaps").
//	    WriteTo(output.NewTextSink(os.Stdout))
//
// Identity-H fonts without a /ToUnicode CMap are looked up under the key
// "to-unicode-<BaseFont>", first in the CMaps bundled with the binary and
// then in the CMap root directory. The lower-level packages cmapfix, reader
// and text are available for finer control.
package pdftext

import (
	"github.com/tsawler/pdftext/reader"
)

// Open returns an Extractor for the document at location, a file path or a
// file, http or https URL. The document is opened by the first terminal
// operation.
//
// Example:
//
//	text, warnings, err := pdftext.Open("document.pdf").Text()
func Open(location string) *Extractor {
	return &Extractor{
		location: location,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader. Fonts repaired during
// extraction stay repaired in the reader's object cache.
//
// Example:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	text, warnings, err := pdftext.FromReader(r).Text()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	count := pdftext.Must(pdftext.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText wraps a call to Text, discarding warnings, and panics if the
// error is non-nil.
//
// Example:
//
//	text := pdftext.MustText(pdftext.Open("document.pdf").Text())
func MustText(text string, _ []Warning, err error) string {
	if err != nil {
		panic(err)
	}
	return text
}
