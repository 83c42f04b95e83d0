package core

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// EntryKind says where an object lives.
type EntryKind int

const (
	EntryFree       EntryKind = iota
	EntryInUse                // Offset is a byte offset in the file
	EntryCompressed           // Offset is the object stream number, Index the position in it
)

// XRefEntry locates one object.
type XRefEntry struct {
	Kind       EntryKind
	Offset     int64
	Generation int
	Index      int
}

// XRefTable maps object numbers to their locations. Trailer is the trailer
// dictionary, or the xref stream dictionary for PDF 1.5 files.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: map[int]XRefEntry{}, Trailer: Dict{}}
}

// Get returns the entry for an object number.
func (x *XRefTable) Get(num int) (XRefEntry, bool) {
	e, ok := x.Entries[num]
	return e, ok
}

// MaxObjectNumber returns the largest object number known to the table.
func (x *XRefTable) MaxObjectNumber() int {
	max := 0
	for n := range x.Entries {
		if n > max {
			max = n
		}
	}
	return max
}

// XRefParser reads cross-reference sections from a seekable file.
type XRefParser struct {
	r io.ReadSeeker
}

// NewXRefParser returns a parser over r.
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{r: r}
}

// FindXRef returns the offset recorded after the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	tail := int64(2048)
	if size < tail {
		tail = size
	}
	if _, err := x.r.Seek(size-tail, io.SeekStart); err != nil {
		return 0, err
	}
	buf := make([]byte, tail)
	if _, err := io.ReadFull(x.r, buf); err != nil {
		return 0, err
	}

	i := bytes.LastIndex(buf, []byte("startxref"))
	if i < 0 {
		return 0, errors.New("startxref not found")
	}
	fields := bytes.Fields(buf[i+len("startxref"):])
	if len(fields) == 0 {
		return 0, errors.New("startxref without offset")
	}
	off, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || off < 0 || off >= size {
		return 0, fmt.Errorf("invalid startxref offset %q", fields[0])
	}
	return off, nil
}

// ParseXRef parses the section at offset, which may be a classic table or
// an xref stream. For hybrid files the table's /XRefStm entries fill in
// objects the table does not list.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	p, err := x.parserAt(offset)
	if err != nil {
		return nil, err
	}
	if !p.cur.is(TokenKeyword, "xref") {
		return x.parseXRefStream(p)
	}

	table, err := parseXRefTable(p)
	if err != nil {
		return nil, err
	}
	if stm, ok := table.Trailer.GetInt("XRefStm"); ok {
		sp, err := x.parserAt(int64(stm))
		if err == nil {
			if hybrid, err := x.parseXRefStream(sp); err == nil {
				for n, e := range hybrid.Entries {
					if _, exists := table.Entries[n]; !exists {
						table.Entries[n] = e
					}
				}
			}
		}
	}
	return table, nil
}

func (x *XRefParser) parserAt(offset int64) (*Parser, error) {
	if _, err := x.r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return NewParser(x.r), nil
}

func (p *Parser) readInt() (int64, error) {
	tok, err := p.current()
	if err != nil {
		return 0, err
	}
	if tok.Type != TokenInteger {
		return 0, fmt.Errorf("expected integer, got %q at offset %d", tok.Value, tok.Pos)
	}
	v, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		return 0, err
	}
	p.advance()
	return v, nil
}

func parseXRefTable(p *Parser) (*XRefTable, error) {
	p.advance()
	table := NewXRefTable()

	for p.cur != nil && p.cur.Type == TokenInteger {
		first, err := p.readInt()
		if err != nil {
			return nil, err
		}
		count, err := p.readInt()
		if err != nil {
			return nil, fmt.Errorf("xref subsection %d: %w", first, err)
		}
		for i := int64(0); i < count; i++ {
			off, err := p.readInt()
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			gen, err := p.readInt()
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			kind := EntryFree
			switch {
			case p.cur.is(TokenKeyword, "n"):
				kind = EntryInUse
			case p.cur.is(TokenKeyword, "f"):
			default:
				return nil, fmt.Errorf("xref entry %d: missing n/f flag", first+i)
			}
			p.advance()
			num := int(first + i)
			if _, seen := table.Entries[num]; !seen {
				table.Entries[num] = XRefEntry{Kind: kind, Offset: off, Generation: int(gen)}
			}
		}
	}

	if !p.cur.is(TokenKeyword, "trailer") {
		return nil, errors.New("xref table without trailer")
	}
	p.advance()
	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %s, not a dictionary", obj.Type())
	}
	table.Trailer = trailer
	return table, nil
}

func (x *XRefParser) parseXRefStream(p *Parser) (*XRefTable, error) {
	iobj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}
	s, ok := iobj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref stream: object %d is %s", iobj.Ref.Number, iobj.Object.Type())
	}
	if t, _ := s.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("xref stream: object %d has /Type %q", iobj.Ref.Number, t)
	}
	return ParseXRefStream(s)
}

// ParseXRefStream decodes the entries of a /Type /XRef stream.
func ParseXRefStream(s *Stream) (*XRefTable, error) {
	wArr, ok := s.Dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return nil, errors.New("xref stream: /W must have three entries")
	}
	var w [3]int
	for i := range w {
		v, ok := wArr[i].(Int)
		if !ok || v < 0 || v > 8 {
			return nil, fmt.Errorf("xref stream: invalid /W[%d]", i)
		}
		w[i] = int(v)
	}
	rowLen := w[0] + w[1] + w[2]
	if rowLen == 0 {
		return nil, errors.New("xref stream: empty /W")
	}

	size, _ := s.Dict.GetInt("Size")
	index := Array{Int(0), size}
	if arr, ok := s.Dict.GetArray("Index"); ok {
		index = arr
	}
	if len(index)%2 != 0 {
		return nil, errors.New("xref stream: odd /Index length")
	}

	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = s.Dict
	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, ok1 := index[i].(Int)
		count, ok2 := index[i+1].(Int)
		if !ok1 || !ok2 {
			return nil, errors.New("xref stream: non-integer /Index")
		}
		for j := 0; j < int(count); j++ {
			if pos+rowLen > len(data) {
				return table, nil
			}
			row := data[pos : pos+rowLen]
			pos += rowLen

			typ := int64(1)
			if w[0] > 0 {
				typ = beUint(row[:w[0]])
			}
			f2 := beUint(row[w[0] : w[0]+w[1]])
			f3 := beUint(row[w[0]+w[1]:])

			var e XRefEntry
			switch typ {
			case 0:
				e = XRefEntry{Kind: EntryFree, Offset: f2, Generation: int(f3)}
			case 1:
				e = XRefEntry{Kind: EntryInUse, Offset: f2, Generation: int(f3)}
			case 2:
				e = XRefEntry{Kind: EntryCompressed, Offset: f2, Index: int(f3)}
			default:
				// Unknown types are references to the null object.
				continue
			}
			table.Entries[int(first)+j] = e
		}
	}
	return table, nil
}

func beUint(b []byte) int64 {
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return int64(binary.BigEndian.Uint64(buf[:]))
}

// ParseAll reads the newest section and every section reachable through
// /Prev, returning one table in which newer entries win. The returned
// trailer is the newest one.
func (x *XRefParser) ParseAll() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	merged := NewXRefTable()
	seen := map[int64]bool{}
	for first := true; ; first = false {
		if seen[offset] {
			break
		}
		seen[offset] = true

		table, err := x.ParseXRef(offset)
		if err != nil {
			if first {
				return nil, err
			}
			// A broken older section still leaves the newer data usable.
			break
		}
		for n, e := range table.Entries {
			if _, exists := merged.Entries[n]; !exists {
				merged.Entries[n] = e
			}
		}
		if first {
			merged.Trailer = table.Trailer
		}

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}
	return merged, nil
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)
var trailerKeyword = regexp.MustCompile(`trailer\s*<<`)

// Reconstruct rebuilds a table by scanning data for "n g obj" headers. It is
// the fallback for files whose xref is missing or damaged. The last trailer
// dictionary in the file, if any, becomes the table's trailer.
func Reconstruct(data []byte) (*XRefTable, error) {
	table := NewXRefTable()
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		// Later definitions of the same number override earlier ones.
		table.Entries[num] = XRefEntry{Kind: EntryInUse, Offset: int64(m[2]), Generation: gen}
	}
	if len(table.Entries) == 0 {
		return nil, errors.New("no objects found")
	}

	if locs := trailerKeyword.FindAllIndex(data, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		p := NewParser(bytes.NewReader(data[last[1]-2:]))
		if obj, err := p.ParseObject(); err == nil {
			if d, ok := obj.(Dict); ok {
				table.Trailer = d
			}
		}
	}
	return table, nil
}
