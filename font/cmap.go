package font

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/tsawler/pdftext/core"
)

// CMap maps character codes to Unicode text, as read from a ToUnicode
// stream. Codes are split according to the codespace ranges; a CMap
// without them splits by the widest source code it maps.
type CMap struct {
	Name      string
	codespace []codespaceRange
	chars     map[codeKey]string
	ranges    []bfRange
}

type codeKey struct {
	code uint32
	n    int
}

type codespaceRange struct {
	n        int
	low, hig []byte
}

type bfRange struct {
	n          int
	start, end uint32
	dst        []byte   // first destination as UTF-16BE, incremented per code
	array      []string // per-code destinations when given as an array
}

// NewCMap returns an empty CMap.
func NewCMap() *CMap {
	return &CMap{chars: map[codeKey]string{}}
}

// ParseCMap parses the PostScript body of a CMap. Unknown operators are
// ignored; only malformed syntax is an error.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	p := core.NewParser(bytes.NewReader(data))
	var stack []core.Object

	for {
		obj, op, err := p.ParseOperand()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cmap: %w", err)
		}
		if op == "" {
			stack = append(stack, obj)
			continue
		}

		switch op {
		case "def":
			if len(stack) >= 2 {
				if k, ok := stack[len(stack)-2].(core.Name); ok && k == "CMapName" {
					if v, ok := stack[len(stack)-1].(core.Name); ok {
						cm.Name = string(v)
					}
				}
			}
		case "endcodespacerange":
			for i := 0; i+1 < len(stack); i += 2 {
				lo, ok1 := stack[i].(core.String)
				hi, ok2 := stack[i+1].(core.String)
				if ok1 && ok2 && len(lo) == len(hi) && len(lo) > 0 && len(lo) <= 4 {
					cm.codespace = append(cm.codespace, codespaceRange{n: len(lo), low: []byte(lo), hig: []byte(hi)})
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(stack); i += 2 {
				src, ok := stack[i].(core.String)
				if !ok || len(src) == 0 || len(src) > 4 {
					continue
				}
				if dst, ok := destination(stack[i+1]); ok {
					cm.chars[codeKey{beUint32([]byte(src)), len(src)}] = dst
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(stack); i += 3 {
				cm.addRange(stack[i], stack[i+1], stack[i+2])
			}
		}
		// Every operator consumes its operands.
		stack = stack[:0]
	}

	sort.Slice(cm.codespace, func(i, j int) bool { return cm.codespace[i].n < cm.codespace[j].n })
	return cm, nil
}

func (cm *CMap) addRange(loObj, hiObj, dstObj core.Object) {
	lo, ok1 := loObj.(core.String)
	hi, ok2 := hiObj.(core.String)
	if !ok1 || !ok2 || len(lo) != len(hi) || len(lo) == 0 || len(lo) > 4 {
		return
	}
	r := bfRange{n: len(lo), start: beUint32([]byte(lo)), end: beUint32([]byte(hi))}
	if r.end < r.start {
		return
	}
	switch d := dstObj.(type) {
	case core.String:
		r.dst = []byte(d)
	case core.Array:
		for _, o := range d {
			s, _ := destination(o)
			r.array = append(r.array, s)
		}
	default:
		return
	}
	cm.ranges = append(cm.ranges, r)
}

// destination decodes a bfchar target: a UTF-16BE string or a glyph name.
func destination(obj core.Object) (string, bool) {
	switch v := obj.(type) {
	case core.String:
		return DecodeUTF16BE([]byte(v)), true
	case core.Name:
		if r, ok := GlyphRune(string(v)); ok {
			return string(r), true
		}
	}
	return "", false
}

func beUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// Lookup returns the text for a code of n bytes.
func (cm *CMap) Lookup(code uint32, n int) (string, bool) {
	if s, ok := cm.chars[codeKey{code, n}]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if r.n != n || code < r.start || code > r.end {
			continue
		}
		off := code - r.start
		if r.array != nil {
			if int(off) < len(r.array) && r.array[off] != "" {
				return r.array[off], true
			}
			return "", false
		}
		return DecodeUTF16BE(addToLast(r.dst, off)), true
	}
	return "", false
}

// addToLast adds off to the last byte of a UTF-16BE destination, carrying
// into the byte before it.
func addToLast(dst []byte, off uint32) []byte {
	out := append([]byte(nil), dst...)
	if len(out) < 2 {
		out = append(make([]byte, 2-len(out)), out...)
	}
	v := uint32(out[len(out)-2])<<8 | uint32(out[len(out)-1])
	v += off
	out[len(out)-2] = byte(v >> 8)
	out[len(out)-1] = byte(v)
	return out
}

// Len returns the number of mapped codes and ranges.
func (cm *CMap) Len() int { return len(cm.chars) + len(cm.ranges) }

// NextCode splits the next code off data and returns it with its length in
// bytes. It returns n == 0 only for empty data.
func (cm *CMap) NextCode(data []byte) (code uint32, n int) {
	if len(data) == 0 {
		return 0, 0
	}
	for _, cs := range cm.codespace {
		if cs.n <= len(data) && inCodespace(data[:cs.n], cs) {
			return beUint32(data[:cs.n]), cs.n
		}
	}
	if len(cm.codespace) > 0 {
		// Outside every range: consume the shortest width.
		n = cm.codespace[0].n
	} else {
		n = cm.widestSource()
	}
	if n > len(data) {
		n = len(data)
	}
	return beUint32(data[:n]), n
}

func inCodespace(b []byte, cs codespaceRange) bool {
	for i := range b {
		if b[i] < cs.low[i] || b[i] > cs.hig[i] {
			return false
		}
	}
	return true
}

func (cm *CMap) widestSource() int {
	n := 1
	for k := range cm.chars {
		if k.n > n {
			n = k.n
		}
	}
	for _, r := range cm.ranges {
		if r.n > n {
			n = r.n
		}
	}
	return n
}
