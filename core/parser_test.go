package core

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, src string) Object {
	t.Helper()
	obj, err := NewParser(strings.NewReader(src)).ParseObject()
	if err != nil {
		t.Fatalf("ParseObject(%q): %v", src, err)
	}
	return obj
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		src  string
		want Object
	}{
		{"null", Null{}},
		{"true", Bool(true)},
		{"-12", Int(-12)},
		{"3.25", Real(3.25)},
		{"(hi)", String("hi")},
		{"<4869>", String("Hi")},
		{"<486>", String("H`")},
		{"/Identity-H", Name("Identity-H")},
		{"12 0 R", IndirectRef{Number: 12}},
		{"[1 2 0 R 3]", Array{Int(1), IndirectRef{Number: 2}, Int(3)}},
		{"[1 2 3]", Array{Int(1), Int(2), Int(3)}},
		{"[]", Array{}},
		{
			"<< /Type /Font /Subtype /Type0 % trailing comment\n /DescendantFonts [7 0 R] /W [1 [500 600]] >>",
			Dict{
				"Type":            Name("Font"),
				"Subtype":         Name("Type0"),
				"DescendantFonts": Array{IndirectRef{Number: 7}},
				"W":               Array{Int(1), Array{Int(500), Int(600)}},
			},
		},
		{"<< /A null /B 1 >>", Dict{"B": Int(1)}},
		{"<< /A >>", Dict{}},
	}
	for _, tt := range tests {
		got := parse(t, tt.src)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseObject(%q) mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestParseObjectErrors(t *testing.T) {
	for _, src := range []string{"[1 2", "<< /A 1", "<< 1 2 >>", "endobj"} {
		if _, err := NewParser(strings.NewReader(src)).ParseObject(); err == nil {
			t.Errorf("ParseObject(%q): expected error", src)
		}
	}
	if _, err := NewParser(strings.NewReader("   ")).ParseObject(); !errors.Is(err, io.EOF) {
		t.Errorf("empty input: got %v, want io.EOF", err)
	}
}

func TestParseOperand(t *testing.T) {
	p := NewParser(strings.NewReader("/F1 12 Tf (x) Tj"))
	var ops []string
	var operands int
	for {
		obj, op, err := p.ParseOperand()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if op != "" {
			ops = append(ops, op)
			continue
		}
		if obj != nil {
			operands++
		}
	}
	if diff := cmp.Diff([]string{"Tf", "Tj"}, ops); diff != "" {
		t.Errorf("operators (-want +got):\n%s", diff)
	}
	if operands != 3 {
		t.Errorf("operands = %d, want 3", operands)
	}
}

type mapResolver map[int]Object

func (m mapResolver) ResolveReference(ref IndirectRef) (Object, error) {
	if obj, ok := m[ref.Number]; ok {
		return obj, nil
	}
	return nil, errors.New("not found")
}

func TestParseIndirectStream(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		resolver ReferenceResolver
		want     string
	}{
		{"direct length", "4 0 obj\n<< /Length 5 >>\nstream\nhello\nendstream\nendobj", nil, "hello"},
		{"crlf eol", "4 0 obj\n<< /Length 5 >>\nstream\r\nhello\r\nendstream\nendobj", nil, "hello"},
		{"indirect length", "4 0 obj\n<< /Length 9 0 R >>\nstream\nhello\nendstream\nendobj", mapResolver{9: Int(5)}, "hello"},
		{"missing length", "4 0 obj\n<< >>\nstream\nhello\nendstream\nendobj", nil, "hello"},
		{"unresolvable length", "4 0 obj\n<< /Length 9 0 R >>\nstream\nhello\nendstream\nendobj", nil, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.src))
			if tt.resolver != nil {
				p.SetReferenceResolver(tt.resolver)
			}
			iobj, err := p.ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject: %v", err)
			}
			if iobj.Ref != (IndirectRef{Number: 4}) {
				t.Errorf("ref = %v", iobj.Ref)
			}
			s, ok := iobj.Object.(*Stream)
			if !ok {
				t.Fatalf("object is %T, want *Stream", iobj.Object)
			}
			if string(s.Data) != tt.want {
				t.Errorf("data = %q, want %q", s.Data, tt.want)
			}
		})
	}
}

func TestParseIndirectObjectSequence(t *testing.T) {
	src := "1 0 obj << /A 1 >> endobj 2 0 obj (two) endobj"
	p := NewParser(strings.NewReader(src))
	for want := 1; want <= 2; want++ {
		iobj, err := p.ParseIndirectObject()
		if err != nil {
			t.Fatalf("object %d: %v", want, err)
		}
		if iobj.Ref.Number != want {
			t.Errorf("got object %d, want %d", iobj.Ref.Number, want)
		}
	}
}

func TestInlineImageData(t *testing.T) {
	p := NewParser(strings.NewReader("BI /W 2 /H 1 ID \x00EIx\xff EI Q"))
	var ops []string
	for {
		_, op, err := p.ParseOperand()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if op == "" {
			continue
		}
		ops = append(ops, op)
		if op == "ID" {
			data, err := p.InlineImageData()
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "\x00EIx\xff" {
				t.Errorf("image data = %q", data)
			}
		}
	}
	if diff := cmp.Diff([]string{"BI", "ID", "Q"}, ops); diff != "" {
		t.Errorf("operators (-want +got):\n%s", diff)
	}
}
