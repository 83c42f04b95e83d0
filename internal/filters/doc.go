// Package filters implements the PDF stream filters needed for text
// extraction.
//
// Decoding:
//
//	decoded, err := filters.FlateDecode(data, params)
//	decoded, err := filters.ASCIIHexDecode(data)
//	decoded, err := filters.ASCII85Decode(data)
//	decoded, err := filters.CCITTFaxDecode(data, params)
//
// FlateDecode honours the Predictor, Columns, Colors and BitsPerComponent
// decode parameters (TIFF predictor 2 and the PNG predictors 10-15).
//
// Encoding is limited to Flate, which is what injected ToUnicode streams use:
//
//	w := filters.NewFlateWriter(&buf)
//	io.Copy(w, src)
//	w.Close()
package filters
