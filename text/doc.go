// Package text extracts positioned text from PDF content streams and
// assembles it into plain text.
//
//	e := text.NewExtractor(resolver)
//	frags, err := e.Extract(content, resources)
//	s := text.Assemble(frags, sortByPosition)
//
// Fonts are loaded lazily from the resources dictionary the first time a Tf
// operator names them, so a ToUnicode CMap added to a font dictionary before
// extraction takes effect. Form XObjects are followed with their own
// resources.
//
// Each [TextFragment] is one shown string with its device-space origin,
// advance width, font size and dominant [Direction]. [Assemble] joins
// fragments into lines, either in content stream order or sorted top to
// bottom and left to right.
package text
