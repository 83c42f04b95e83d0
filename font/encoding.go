package font

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/pdftext/core"
)

// simpleEncoding maps single-byte codes to runes; zero means unmapped.
type simpleEncoding [256]rune

func fromCharmap(cm *charmap.Charmap) simpleEncoding {
	var e simpleEncoding
	for i := 0x20; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r != '�' {
			e[i] = r
		}
	}
	return e
}

var (
	winAnsi   = fromCharmap(charmap.Windows1252)
	macRoman  = fromCharmap(charmap.Macintosh)
	standard  = standardEncoding()
	pdfDocEnc = pdfDocEncoding()
)

// standardEncoding is close enough to WinAnsi for text extraction; the
// quote glyphs differ and the upper half is not filled.
func standardEncoding() simpleEncoding {
	var e simpleEncoding
	copy(e[:128], winAnsi[:128])
	e['\''] = '’'
	e['`'] = '‘'
	return e
}

func pdfDocEncoding() simpleEncoding {
	var e simpleEncoding
	for i := 0x20; i < 256; i++ {
		e[i] = pdfDocRune(byte(i))
	}
	return e
}

func baseEncoding(name string) (simpleEncoding, bool) {
	switch name {
	case "WinAnsiEncoding":
		return winAnsi, true
	case "MacRomanEncoding", "MacExpertEncoding":
		return macRoman, true
	case "StandardEncoding":
		return standard, true
	case "PDFDocEncoding":
		return pdfDocEnc, true
	}
	return simpleEncoding{}, false
}

// applyDifferences overlays a /Differences array: an integer sets the next
// code, each following name assigns a glyph to it.
func (e *simpleEncoding) applyDifferences(diffs core.Array) {
	code := -1
	for _, item := range diffs {
		switch v := item.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code < 256 {
				if r, ok := GlyphRune(string(v)); ok {
					e[code] = r
				} else {
					e[code] = 0
				}
			}
			code++
		}
	}
}
