// Package core implements the COS layer of PDF: the object types, a lexer
// and parser for PDF syntax, cross-reference tables and streams, object
// streams and stream decoding.
//
// Objects are plain Go values. A dictionary is a map that callers may mutate
// in place; two holders of the same Dict see each other's changes, which is
// what lets a patched font dictionary stay patched on every page that shares
// it.
//
//	p := core.NewParser(strings.NewReader("<< /Type /Font /BaseFont /Helvetica >>"))
//	obj, err := p.ParseObject()
//
// Cross-reference data is read with [XRefParser], which understands classic
// tables, xref streams (PDF 1.5) and hybrid files, following /Prev chains.
package core
