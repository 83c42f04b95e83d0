package core

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/tsawler/pdftext/internal/pdftest"
)

func buildSample() *pdftest.Builder {
	b := pdftest.New()
	font := b.Add("<< /Type /Font /Subtype /Type0 /BaseFont /ABCDEF+SimSun /Encoding /Identity-H >>")
	b.SimpleDocument(pdftest.Page{
		Resources: fmt.Sprintf("<< /Font << /F1 %s >> >>", pdftest.Ref(font)),
		Content:   "BT /F1 12 Tf <00010002> Tj ET",
	})
	return b
}

func TestParseAllClassicTable(t *testing.T) {
	data := buildSample().Bytes()

	table, err := NewXRefParser(bytes.NewReader(data)).ParseAll()
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if got := table.MaxObjectNumber(); got != 5 {
		t.Errorf("MaxObjectNumber = %d, want 5", got)
	}
	if _, ok := table.Trailer.GetRef("Root"); !ok {
		t.Error("trailer has no /Root")
	}

	e, ok := table.Get(1)
	if !ok || e.Kind != EntryInUse {
		t.Fatalf("entry 1 = %+v, %v", e, ok)
	}
	if !bytes.HasPrefix(data[e.Offset:], []byte("1 0 obj")) {
		t.Errorf("offset %d does not point at object 1", e.Offset)
	}
	if e, _ := table.Get(0); e.Kind != EntryFree {
		t.Errorf("entry 0 kind = %v, want free", e.Kind)
	}
}

func TestParseAllXRefStream(t *testing.T) {
	b := buildSample()
	b.Compress(1)
	data := b.XRefStreamBytes()

	table, err := NewXRefParser(bytes.NewReader(data)).ParseAll()
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if typ, _ := table.Trailer.GetName("Type"); typ != "XRef" {
		t.Errorf("trailer /Type = %q, want XRef", typ)
	}

	e, ok := table.Get(1)
	if !ok || e.Kind != EntryCompressed || e.Index != 0 {
		t.Fatalf("entry 1 = %+v, want compressed at index 0", e)
	}
	stm, ok := table.Get(int(e.Offset))
	if !ok || stm.Kind != EntryInUse {
		t.Fatalf("object stream entry = %+v", stm)
	}

	p := NewParser(bytes.NewReader(data[stm.Offset:]))
	iobj, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	os, err := NewObjectStream(iobj.Object.(*Stream))
	if err != nil {
		t.Fatal(err)
	}
	obj, err := os.Object(1, e.Index)
	if err != nil {
		t.Fatal(err)
	}
	font := obj.(Dict)
	if name, _ := font.GetName("BaseFont"); name != "ABCDEF+SimSun" {
		t.Errorf("BaseFont = %q", name)
	}
}

func TestParseAllFollowsPrev(t *testing.T) {
	base := buildSample().Bytes()
	oldXRef, err := NewXRefParser(bytes.NewReader(base)).FindXRef()
	if err != nil {
		t.Fatal(err)
	}

	// Incremental update replacing object 1.
	var buf bytes.Buffer
	buf.Write(base)
	off := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Font /BaseFont /Updated >>\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n1 1\n%010d 00000 n \ntrailer\n<< /Size 6 /Root 2 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", off, oldXRef, xref)

	table, err := NewXRefParser(bytes.NewReader(buf.Bytes())).ParseAll()
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := table.Get(1); e.Offset != int64(off) {
		t.Errorf("object 1 offset = %d, want updated %d", e.Offset, off)
	}
	if _, ok := table.Get(5); !ok {
		t.Error("object 5 from the original section is missing")
	}
	if _, ok := table.Trailer.GetInt("Prev"); !ok {
		t.Error("merged trailer should be the newest one")
	}
}

func TestFindXRefMissing(t *testing.T) {
	if _, err := NewXRefParser(bytes.NewReader([]byte("%PDF-1.4\nno trailer"))).FindXRef(); err == nil {
		t.Error("expected error without startxref")
	}
}

func TestReconstruct(t *testing.T) {
	data := buildSample().Bytes()
	// Damage the startxref pointer.
	i := bytes.LastIndex(data, []byte("startxref"))
	damaged := append(append([]byte(nil), data[:i]...), []byte("startxref\n99999999\n%%EOF\n")...)

	if _, err := NewXRefParser(bytes.NewReader(damaged)).ParseAll(); err == nil {
		t.Fatal("expected ParseAll to fail on damaged file")
	}
	table, err := Reconstruct(damaged)
	if err != nil {
		t.Fatal(err)
	}
	for n := 1; n <= 5; n++ {
		e, ok := table.Get(n)
		if !ok {
			t.Fatalf("object %d not found", n)
		}
		if !bytes.HasPrefix(damaged[e.Offset:], []byte(fmt.Sprintf("%d 0 obj", n))) {
			t.Errorf("object %d offset %d is wrong", n, e.Offset)
		}
	}
	if _, ok := table.Trailer.GetRef("Root"); !ok {
		t.Error("trailer not recovered")
	}
}

func TestParseXRefStreamIndex(t *testing.T) {
	rows := []byte{
		1, 0, 100, 0,
		2, 7, 3, 0,
		0, 0, 0, 0,
	}
	s := &Stream{Dict: Dict{
		"Type":  Name("XRef"),
		"W":     Array{Int(1), Int(2), Int(1)},
		"Index": Array{Int(10), Int(2), Int(20), Int(1)},
	}, Data: rows}

	table, err := ParseXRefStream(s)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]XRefEntry{
		10: {Kind: EntryInUse, Offset: 100},
		11: {Kind: EntryCompressed, Offset: 0x0703},
		20: {Kind: EntryFree},
	}
	for n, w := range want {
		if got := table.Entries[n]; got != w {
			t.Errorf("entry %d = %+v, want %+v", n, got, w)
		}
	}
}
