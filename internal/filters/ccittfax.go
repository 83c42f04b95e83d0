package filters

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes Group 3 or Group 4 fax data, the usual encoding of
// bi-level scanned pages. The result is one bit per pixel, MSB first, rows
// padded to a byte boundary.
//
// Recognised parameters: K (<0 selects Group 4), Columns (default 1728),
// Rows (0 means detect from the data) and BlackIs1.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	sf := ccitt.Group3
	if params.Int("K", 0) < 0 {
		sf = ccitt.Group4
	}

	rows := params.Int("Rows", 0)
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{Invert: params.Bool("BlackIs1", false)}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, params.Int("Columns", 1728), rows, opts)
	return io.ReadAll(r)
}
