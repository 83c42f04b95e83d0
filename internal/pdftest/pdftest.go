// Package pdftest assembles small PDF files for tests. Object bodies are
// given as PDF source text; the builder numbers them and computes the
// cross-reference offsets.
package pdftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/pdftext/internal/filters"
)

// Builder collects indirect objects and serializes them as a PDF file.
type Builder struct {
	bodies     map[int]string
	compressed map[int]bool
	next       int
	root       int
	info       int
	catalog    string
}

// New returns an empty builder. Object numbers start at 1.
func New() *Builder {
	return &Builder{bodies: map[int]string{}, compressed: map[int]bool{}, next: 1}
}

// Reserve allocates an object number to be filled in later with Set.
func (b *Builder) Reserve() int {
	n := b.next
	b.next++
	return n
}

// Add stores body as a new object and returns its number.
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.bodies[n] = body
	return n
}

// Set stores body under a reserved number.
func (b *Builder) Set(num int, body string) {
	b.bodies[num] = body
}

// SetRoot names the catalog object.
func (b *Builder) SetRoot(num int) { b.root = num }

// SetInfo names the document information dictionary.
func (b *Builder) SetInfo(num int) { b.info = num }

// CatalogEntries adds entries, given as dictionary source, to the catalog
// written by a later SimpleDocument call.
func (b *Builder) CatalogEntries(entries string) { b.catalog = entries }

// Compress marks an object to be stored in an object stream when the file
// is written with XRefStreamBytes. Streams cannot be compressed.
func (b *Builder) Compress(num int) { b.compressed[num] = true }

// Stream returns the body of a stream object with an uncompressed payload.
// dict is the dictionary content without the angle brackets.
func Stream(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// FlateStream returns the body of a Flate-compressed stream object.
func FlateStream(dict string, data []byte) string {
	enc, err := filters.FlateEncode(data)
	if err != nil {
		panic(err)
	}
	return Stream(strings.TrimSpace(dict+" /Filter /FlateDecode"), enc)
}

// Ref formats an indirect reference to num.
func Ref(num int) string { return fmt.Sprintf("%d 0 R", num) }

func (b *Builder) numbers() []int {
	nums := make([]int, 0, len(b.bodies))
	for n := range b.bodies {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func (b *Builder) trailerEntries(size int) string {
	s := fmt.Sprintf("/Size %d", size)
	if b.root > 0 {
		s += " /Root " + Ref(b.root)
	}
	if b.info > 0 {
		s += " /Info " + Ref(b.info)
	}
	return s
}

func header(buf *bytes.Buffer) {
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
}

func writeObject(buf *bytes.Buffer, num int, body string) {
	fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// Bytes writes the file with a classic xref table.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	header(&buf)

	size := b.next
	offsets := make([]int, size)
	for _, n := range b.numbers() {
		offsets[n] = buf.Len()
		writeObject(&buf, n, b.bodies[n])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n < size; n++ {
		if _, ok := b.bodies[n]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", b.trailerEntries(size), xref)
	return buf.Bytes()
}

// XRefStreamBytes writes the file with a compressed xref stream. Objects
// marked with Compress go into a single object stream.
func (b *Builder) XRefStreamBytes() []byte {
	var buf bytes.Buffer
	header(&buf)

	objStm := b.next
	xrefNum := b.next + 1
	size := b.next + 2

	type entry struct {
		typ      byte
		off, idx int
	}
	entries := make([]entry, size)

	var packed []int
	for _, n := range b.numbers() {
		if b.compressed[n] {
			packed = append(packed, n)
			continue
		}
		entries[n] = entry{typ: 1, off: buf.Len()}
		writeObject(&buf, n, b.bodies[n])
	}

	if len(packed) > 0 {
		var head, body bytes.Buffer
		for i, n := range packed {
			fmt.Fprintf(&head, "%d %d ", n, body.Len())
			body.WriteString(b.bodies[n])
			body.WriteString("\n")
			entries[n] = entry{typ: 2, off: objStm, idx: i}
		}
		data := append(head.Bytes(), body.Bytes()...)
		entries[objStm] = entry{typ: 1, off: buf.Len()}
		dict := fmt.Sprintf("/Type /ObjStm /N %d /First %d", len(packed), head.Len())
		writeObject(&buf, objStm, FlateStream(dict, data))
	}

	entries[xrefNum] = entry{typ: 1, off: buf.Len()}
	var rows bytes.Buffer
	for _, e := range entries {
		rows.WriteByte(e.typ)
		var off [4]byte
		binary.BigEndian.PutUint32(off[:], uint32(e.off))
		rows.Write(off[:])
		var idx [2]byte
		binary.BigEndian.PutUint16(idx[:], uint16(e.idx))
		rows.Write(idx[:])
	}
	dict := "/Type /XRef /W [1 4 2] " + b.trailerEntries(size)
	xref := buf.Len()
	writeObject(&buf, xrefNum, FlateStream(dict, rows.Bytes()))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// Page describes one page for SimpleDocument.
type Page struct {
	Resources string // resource dictionary source, e.g. "<< /Font << /F1 5 0 R >> >>"
	Content   string // raw content stream
}

// SimpleDocument builds a catalog and a flat page tree for pages, returning
// the builder so callers can add shared objects before or after. Objects
// referenced from Resources must already exist or be reserved.
func (b *Builder) SimpleDocument(pages ...Page) *Builder {
	catalog := b.Reserve()
	tree := b.Reserve()

	kids := make([]string, 0, len(pages))
	for _, pg := range pages {
		content := b.Add(Stream("", []byte(pg.Content)))
		res := pg.Resources
		if res == "" {
			res = "<< >>"
		}
		page := b.Add(fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources %s /Contents %s >>",
			Ref(tree), res, Ref(content)))
		kids = append(kids, Ref(page))
	}

	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s %s>>", Ref(tree), b.catalog))
	b.SetRoot(catalog)
	return b
}
