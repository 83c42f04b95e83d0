package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/tsawler/pdftext/cmapfix"
	"github.com/tsawler/pdftext/ocr"
	"github.com/tsawler/pdftext/output"
	"github.com/tsawler/pdftext/pages"
	"github.com/tsawler/pdftext/reader"
	"github.com/tsawler/pdftext/source"
	"github.com/tsawler/pdftext/text"
)

// Extractor provides a fluent interface for extracting text from PDFs.
// Each configuration method returns a new Extractor instance, so chains
// can branch from a shared prefix.
type Extractor struct {
	// Source
	location string

	reader *reader.Reader
	doc    source.Document // set when the Extractor opened location

	// Lifecycle
	readerOpened bool

	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		location:     e.location,
		reader:       e.reader,
		doc:          e.doc,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// ensureReader opens the document if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.location == "" {
		return errors.New("no document specified")
	}

	doc, err := source.Open(e.options.ctx, e.location)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.location, err)
	}
	r, err := reader.NewReader(doc)
	if err != nil {
		doc.Close()
		return fmt.Errorf("read %s: %w", e.location, err)
	}
	e.doc = doc
	e.reader = r
	e.readerOpened = true
	return nil
}

// Close releases the document if the Extractor opened it. It is safe to
// call Close multiple times.
func (e *Extractor) Close() error {
	if e.doc == nil {
		return nil
	}
	err := e.doc.Close()
	e.doc = nil
	e.reader = nil
	e.readerOpened = false
	return err
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages restricts extraction to the listed 1-indexed pages. Multiple calls
// are cumulative. A list overrides PageRange; pages are always extracted in
// ascending order, and numbers outside the document are ignored.
//
// Example:
//
//	text, _, err := pdftext.Open("doc.pdf").Pages(5, 1, 3).Text()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange restricts extraction to pages start through end, 1-indexed and
// inclusive. A start below 1 is raised to 1 and an end past the last page
// means the last page; start > end, including end < 1, selects nothing.
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	newExt.options.start = start
	newExt.options.end = end
	return newExt
}

// SortByPosition orders each page's text top to bottom and left to right
// (right to left on RTL lines) instead of content-stream order.
func (e *Extractor) SortByPosition() *Extractor {
	newExt := e.clone()
	newExt.options.sortByPosition = true
	return newExt
}

// CMapRoot sets the directory searched for "to-unicode-<BaseFont>" files
// after the bundled set. An empty dir disables the directory lookup.
func (e *Extractor) CMapRoot(dir string) *Extractor {
	newExt := e.clone()
	newExt.options.cmapRoot = dir
	return newExt
}

// BundledCMaps replaces the CMaps compiled into the binary. A nil fsys
// disables the bundled lookup.
func (e *Extractor) BundledCMaps(fsys fs.FS) *Extractor {
	newExt := e.clone()
	newExt.options.bundled = fsys
	return newExt
}

// WithoutCMapRepair extracts with the document's fonts as they are.
func (e *Extractor) WithoutCMapRepair() *Extractor {
	newExt := e.clone()
	newExt.options.repair = false
	return newExt
}

// OCR recognises the images of pages that yield no text. Tesseract is
// started on demand with languages chosen from the document's /Lang; a
// binary built without the ocr tag records a warning instead.
func (e *Extractor) OCR() *Extractor {
	newExt := e.clone()
	newExt.options.ocr = true
	return newExt
}

// OCRWith is OCR with a caller-owned recognizer.
func (e *Extractor) OCRWith(rec ocr.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.options.ocr = true
	newExt.options.recognizer = rec
	return newExt
}

// WithContext sets the context used to fetch URL input. A nil ctx fails
// the terminal operation.
func (e *Extractor) WithContext(ctx context.Context) *Extractor {
	newExt := e.clone()
	if ctx == nil {
		newExt.err = errors.New("nil context")
		return newExt
	}
	newExt.options.ctx = ctx
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Text extracts the selected pages as plain text, each page followed by a
// newline. This is a terminal operation that closes a document the
// Extractor opened.
func (e *Extractor) Text() (string, []Warning, error) {
	var b strings.Builder
	warnings, err := e.WriteTo(output.NewTextSink(&b))
	if err != nil {
		return "", warnings, err
	}
	return b.String(), warnings, nil
}

// WriteTo extracts the selected pages into sink, in ascending page order.
// This is a terminal operation that closes a document the Extractor
// opened.
//
// Missing CMap sources, unparsable content and OCR problems are returned
// as warnings. Errors reading the document, copying a CMap source or
// writing to the sink stop the run.
func (e *Extractor) WriteTo(sink output.Sink) ([]Warning, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, err
	}
	defer e.Close()

	count, err := e.reader.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	x := &extraction{e: e}
	if e.options.repair {
		locator := cmapfix.NewResolver(e.options.bundled, e.options.cmapRoot)
		x.patcher = cmapfix.NewPatcher(e.reader, locator)
	}
	if e.options.ocr {
		defer x.startOCR()()
	}

	if err := sink.Begin(e.metadata()); err != nil {
		return x.warnings, err
	}
	for _, index := range e.options.selectPages(count) {
		page, err := e.reader.Page(index)
		if err != nil {
			return x.warnings, fmt.Errorf("page %d: %w", index+1, err)
		}
		pageText, err := x.page(page)
		if err != nil {
			return x.warnings, err
		}
		if err := sink.WritePage(page.Number(), pageText); err != nil {
			return x.warnings, err
		}
	}
	return x.warnings, sink.End()
}

// PageCount returns the number of pages in the document. It does NOT
// close the document, allowing further operations.
//
// Example:
//
//	ext := pdftext.Open("document.pdf")
//	defer ext.Close()
//	count, err := ext.PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.reader.PageCount()
}

// Metadata returns the document information dictionary entries. It does
// NOT close the document.
func (e *Extractor) Metadata() (output.Metadata, error) {
	if e.err != nil {
		return output.Metadata{}, e.err
	}
	if err := e.ensureReader(); err != nil {
		return output.Metadata{}, err
	}
	return e.metadata(), nil
}

func (e *Extractor) metadata() output.Metadata {
	r := e.reader
	return output.Metadata{
		Title:    r.InfoString("Title"),
		Author:   r.InfoString("Author"),
		Subject:  r.InfoString("Subject"),
		Keywords: r.InfoString("Keywords"),
		Creator:  r.InfoString("Creator"),
		Producer: r.InfoString("Producer"),
	}
}

// ============================================================================
// Internal helpers
// ============================================================================

// extraction carries the per-call state of WriteTo.
type extraction struct {
	e          *Extractor
	patcher    *cmapfix.Patcher
	recognizer ocr.Recognizer
	warnings   []Warning
}

func (r *extraction) warn(page int, kind WarningKind, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{Page: page, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// startOCR prepares the recognizer and returns the function releasing it.
func (r *extraction) startOCR() func() {
	if rec := r.e.options.recognizer; rec != nil {
		r.recognizer = rec
		return func() {}
	}
	client, err := ocr.New(ocr.Config{Languages: ocr.LanguagesFor(r.e.reader.Lang())})
	if err != nil {
		r.warn(0, OCRFailed, "%v", err)
		return func() {}
	}
	r.recognizer = client
	return func() { client.Close() }
}

// page repairs, extracts and assembles the text of one page.
func (r *extraction) page(page *pages.Page) (string, error) {
	number := page.Number()
	if r.patcher != nil {
		outcomes, err := r.patcher.PatchPage(page)
		if err != nil {
			return "", err
		}
		for _, o := range outcomes {
			if o.Result == cmapfix.NoSource {
				r.warn(number, MissingCMap, "%s", o)
			}
		}
	}

	frags, err := r.e.reader.ExtractTextFragments(page)
	if err != nil {
		r.warn(number, ContentError, "%v", err)
	}
	pageText := text.Assemble(frags, r.e.options.sortByPosition)

	if r.recognizer != nil && strings.TrimSpace(pageText) == "" {
		pageText = r.recognize(page)
	}
	return pageText, nil
}

// recognize runs OCR over the images of a page without extractable text.
func (r *extraction) recognize(page *pages.Page) string {
	number := page.Number()
	images, err := r.e.reader.PageImages(page)
	if err != nil {
		r.warn(number, OCRFailed, "%v", err)
		return ""
	}

	var encoded [][]byte
	for _, img := range images {
		data, err := img.Encode()
		if err != nil {
			r.warn(number, OCRFailed, "image %s: %v", img.Name, err)
			continue
		}
		encoded = append(encoded, data)
	}
	s, err := ocr.RecognizePage(r.recognizer, encoded)
	if err != nil {
		r.warn(number, OCRFailed, "%v", err)
	}
	return s
}
