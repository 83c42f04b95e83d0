package font

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/pdftext/core"
)

// Resolver follows indirect references inside font dictionaries.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Glyph is one decoded character code.
type Glyph struct {
	Code uint32
	// Text is the Unicode text for the code; empty when the font offers no
	// mapping.
	Text string
	// Width is the horizontal advance in text space units per unit of font
	// size (glyph width / 1000 for most fonts).
	Width float64
	// WordSpace reports a single-byte code 32, to which word spacing applies.
	WordSpace bool
}

// Font holds what text extraction needs from a font dictionary.
type Font struct {
	Name     string
	BaseFont string
	Subtype  string
	Encoding string

	toUnicode  *CMap
	codes      *CMap // code splitting for composite fonts with an embedded encoding CMap
	simple     *simpleEncoding
	composite  bool
	ucs2       bool
	vertical   bool
	widths     map[uint32]float64
	defWidth   float64
	widthScale float64 // Type3 FontMatrix scale; zero means 1/1000
}

// Load builds a Font from a font dictionary. Damaged optional entries are
// ignored; only an unusable dictionary is an error.
func Load(dict core.Dict, r Resolver) (*Font, error) {
	if dict == nil {
		return nil, errors.New("font: nil dictionary")
	}
	f := &Font{widths: map[uint32]float64{}}
	if n, ok := dict.GetName("Name"); ok {
		f.Name = string(n)
	}
	if n, ok := dict.GetName("BaseFont"); ok {
		f.BaseFont = string(n)
	}
	if n, ok := dict.GetName("Subtype"); ok {
		f.Subtype = string(n)
	}

	if s, ok := resolve(r, dict.Get("ToUnicode")).(*core.Stream); ok {
		data, err := s.Decode()
		if err == nil {
			if cm, err := ParseCMap(data); err == nil && cm.Len() > 0 {
				f.toUnicode = cm
			}
		}
	}

	var err error
	if f.Subtype == "Type0" {
		err = f.loadComposite(dict, r)
	} else {
		f.loadSimple(dict, r)
	}
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", f.BaseFont, err)
	}
	return f, nil
}

// HasToUnicode reports whether the font carries a usable ToUnicode CMap.
func (f *Font) HasToUnicode() bool { return f.toUnicode != nil }

// IsVertical reports vertical writing mode (Identity-V).
func (f *Font) IsVertical() bool { return f.vertical }

func (f *Font) loadComposite(dict core.Dict, r Resolver) error {
	f.composite = true
	f.defWidth = 1000

	switch enc := resolve(r, dict.Get("Encoding")).(type) {
	case core.Name:
		f.Encoding = string(enc)
	case *core.Stream:
		if data, err := enc.Decode(); err == nil {
			if cm, err := ParseCMap(data); err == nil {
				f.codes = cm
				f.Encoding = cm.Name
			}
		}
	default:
		f.Encoding = "Identity-H"
	}
	f.vertical = strings.HasSuffix(f.Encoding, "-V")
	f.ucs2 = strings.Contains(f.Encoding, "UCS2") || strings.Contains(f.Encoding, "UTF16")

	descendants, ok := resolve(r, dict.Get("DescendantFonts")).(core.Array)
	if !ok || len(descendants) == 0 {
		return errors.New("missing DescendantFonts")
	}
	cid, ok := resolve(r, descendants[0]).(core.Dict)
	if !ok {
		return errors.New("descendant font is not a dictionary")
	}
	if dw, ok := core.Number(resolve(r, cid.Get("DW"))); ok {
		f.defWidth = dw
	}
	if w, ok := resolve(r, cid.Get("W")).(core.Array); ok {
		f.parseW(w, r)
	}
	return nil
}

// parseW reads a CIDFont /W array: "c [w1 w2 ...]" or "cfirst clast w".
func (f *Font) parseW(w core.Array, r Resolver) {
	for i := 0; i < len(w); {
		start, ok := core.Number(resolve(r, w[i]))
		if !ok || i+1 >= len(w) {
			return
		}
		if list, ok := resolve(r, w[i+1]).(core.Array); ok {
			for j := range list {
				if v, ok := core.Number(resolve(r, list[j])); ok {
					f.widths[uint32(start)+uint32(j)] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		end, ok1 := core.Number(resolve(r, w[i+1]))
		v, ok2 := core.Number(resolve(r, w[i+2]))
		if ok1 && ok2 && end >= start && end-start < 1<<16 {
			for c := uint32(start); c <= uint32(end); c++ {
				f.widths[c] = v
			}
		}
		i += 3
	}
}

func (f *Font) loadSimple(dict core.Dict, r Resolver) {
	enc := winAnsi
	if strings.HasPrefix(stripSubset(f.BaseFont), "Symbol") || strings.HasPrefix(stripSubset(f.BaseFont), "ZapfDingbats") {
		enc = simpleEncoding{}
	}
	switch e := resolve(r, dict.Get("Encoding")).(type) {
	case core.Name:
		f.Encoding = string(e)
		if base, ok := baseEncoding(f.Encoding); ok {
			enc = base
		}
	case core.Dict:
		if n, ok := e.GetName("BaseEncoding"); ok {
			f.Encoding = string(n)
			if base, ok := baseEncoding(f.Encoding); ok {
				enc = base
			}
		}
		if diffs, ok := resolve(r, e.Get("Differences")).(core.Array); ok {
			enc.applyDifferences(diffs)
		}
	}
	f.simple = &enc

	if f.Subtype == "Type3" {
		if m, ok := resolve(r, dict.Get("FontMatrix")).(core.Array); ok {
			if a, ok := m.Number(0); ok {
				f.widthScale = a
			}
		}
	}

	f.defWidth = -1
	if fd, ok := resolve(r, dict.Get("FontDescriptor")).(core.Dict); ok {
		if mw, ok := core.Number(resolve(r, fd.Get("MissingWidth"))); ok && mw > 0 {
			f.defWidth = mw
		}
	}
	first := 0
	if fc, ok := core.Number(resolve(r, dict.Get("FirstChar"))); ok {
		first = int(fc)
	}
	if ws, ok := resolve(r, dict.Get("Widths")).(core.Array); ok {
		for i := range ws {
			if v, ok := core.Number(resolve(r, ws[i])); ok {
				f.widths[uint32(first+i)] = v
			}
		}
	}
}

// Decode splits a shown string into character codes and decodes each.
func (f *Font) Decode(data []byte) []Glyph {
	var out []Glyph
	for len(data) > 0 {
		code, n := f.nextCode(data)
		out = append(out, Glyph{
			Code:      code,
			Text:      f.text(code, n, data[:n]),
			Width:     f.advance(code),
			WordSpace: n == 1 && code == 32,
		})
		data = data[n:]
	}
	return out
}

// Text returns the NFC-normalised text of a shown string.
func (f *Font) Text(data []byte) string {
	var b strings.Builder
	for _, g := range f.Decode(data) {
		b.WriteString(g.Text)
	}
	return NormalizeUnicode(b.String())
}

func (f *Font) nextCode(data []byte) (uint32, int) {
	switch {
	case !f.composite:
		return uint32(data[0]), 1
	case f.codes != nil && len(f.codes.codespace) > 0:
		return f.codes.NextCode(data)
	case f.toUnicode != nil && len(f.toUnicode.codespace) > 0 && !strings.HasPrefix(f.Encoding, "Identity"):
		return f.toUnicode.NextCode(data)
	}
	if len(data) < 2 {
		return uint32(data[0]), 1
	}
	return uint32(data[0])<<8 | uint32(data[1]), 2
}

func (f *Font) text(code uint32, n int, raw []byte) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.Lookup(code, n); ok {
			return s
		}
	}
	if f.composite {
		if f.ucs2 {
			return DecodeUTF16BE(raw)
		}
		return ""
	}
	if r := f.simple[code&0xFF]; r != 0 {
		return string(r)
	}
	return ""
}

func (f *Font) advance(code uint32) float64 {
	if f.widthScale != 0 {
		return f.width(code) * f.widthScale
	}
	return f.width(code) / 1000
}

func (f *Font) width(code uint32) float64 {
	if w, ok := f.widths[code]; ok {
		return w
	}
	if f.composite || f.defWidth > 0 {
		return f.defWidth
	}
	if w, ok := standardWidth(f.BaseFont, int(code)); ok {
		return w
	}
	return 500
}

func resolve(r Resolver, obj core.Object) core.Object {
	if _, ok := obj.(core.IndirectRef); !ok || r == nil {
		return obj
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil
	}
	return v
}
