package pdftext

import (
	"context"
	"io/fs"
	"math"

	"github.com/tsawler/pdftext/cmapdata"
	"github.com/tsawler/pdftext/ocr"
)

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// Page selection, 1-indexed. A non-empty list overrides the range.
	pages []int
	start int
	end   int // clamped to the page count

	sortByPosition bool

	// CMap repair
	repair   bool
	bundled  fs.FS
	cmapRoot string // "" disables the filesystem lookup

	// OCR fallback for pages without text
	ocr        bool
	recognizer ocr.Recognizer // nil means start Tesseract on demand

	ctx context.Context
}

func defaultOptions() ExtractOptions {
	return ExtractOptions{
		start:   1,
		end:     math.MaxInt,
		repair:  true,
		bundled: cmapdata.FS(),
		ctx:     context.Background(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	c := o
	if o.pages != nil {
		c.pages = make([]int, len(o.pages))
		copy(c.pages, o.pages)
	}
	return c
}

// selectPages returns the 0-based indices of the pages to extract from a
// document of count pages, in ascending order.
func (o ExtractOptions) selectPages(count int) []int {
	var indices []int
	if len(o.pages) > 0 {
		listed := make(map[int]bool, len(o.pages))
		for _, p := range o.pages {
			listed[p] = true
		}
		for p := 1; p <= count; p++ {
			if listed[p] {
				indices = append(indices, p-1)
			}
		}
		return indices
	}

	start, end := o.start, o.end
	if start < 1 {
		start = 1
	}
	if end > count {
		end = count
	}
	for p := start; p <= end; p++ {
		indices = append(indices, p-1)
	}
	return indices
}
