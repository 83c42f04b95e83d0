// Package font turns the character codes shown by text operators into
// Unicode text and glyph widths.
//
// A [Font] is loaded from a font dictionary. Codes are mapped to text in
// this order: the font's ToUnicode CMap, a UCS-2/UTF-16 predefined CMap
// encoding, and finally the simple-font encoding (base encoding plus
// /Differences). Composite fonts with an Identity encoding and no ToUnicode
// have no path to Unicode; their codes produce no text.
//
// Decoded text is normalised to NFC.
package font
