package font

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

var (
	utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// DecodeUTF16BE decodes big-endian UTF-16 without a byte order mark.
// Unpaired surrogates become U+FFFD.
func DecodeUTF16BE(b []byte) string {
	s, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(s)
}

// DecodeTextString decodes a PDF text string such as a /Title entry. UTF-16
// and UTF-8 strings are recognised by their byte order marks; anything else
// is PDFDocEncoding.
func DecodeTextString(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return DecodeUTF16BE(b[2:])
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		s, err := utf16le.NewDecoder().Bytes(b[2:])
		if err == nil {
			return string(s)
		}
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return strings.ToValidUTF8(string(b[3:]), "�")
	}

	var sb strings.Builder
	for _, c := range b {
		sb.WriteRune(pdfDocRune(c))
	}
	return sb.String()
}

// pdfDocRune maps a PDFDocEncoding byte. It agrees with Latin-1 except in
// 0x18-0x1F, 0x80-0xA0 and 0xAD.
func pdfDocRune(c byte) rune {
	if c >= 0x18 && c <= 0x1F {
		return pdfDocLow[c-0x18]
	}
	if c >= 0x80 && c <= 0x9F {
		return pdfDocHigh[c-0x80]
	}
	switch c {
	case 0xA0:
		return '€'
	case 0xAD:
		return '�'
	}
	return rune(c)
}

var pdfDocLow = [8]rune{'˘', 'ˇ', 'ˆ', '˙', '˝', '˛', '˚', '˜'}

var pdfDocHigh = [32]rune{
	'•', '†', '‡', '…', '—', '–', 'ƒ', '⁄', '‹', '›', '−', '‰', '„', '“', '”', '‘',
	'’', '‚', '™', 'ﬁ', 'ﬂ', 'Ł', 'Œ', 'Š', 'Ÿ', 'Ž', 'ı', 'ł', 'œ', 'š', 'ž', '�',
}

// NormalizeUnicode returns s in Unicode normalization form C.
func NormalizeUnicode(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
