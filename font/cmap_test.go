package font

import "testing"

const identityUCS = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
3 beginbfchar
<0003> <0020>
<0004> <0041>
<0010> <00660069>
endbfchar
2 beginbfrange
<0020> <0022> <0061>
<0030> <0032> [<0058> <0059> <D83DDE00>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

func TestParseCMap(t *testing.T) {
	cm, err := ParseCMap([]byte(identityUCS))
	if err != nil {
		t.Fatalf("ParseCMap: %v", err)
	}
	if cm.Name != "Adobe-Identity-UCS" {
		t.Errorf("Name = %q", cm.Name)
	}

	tests := []struct {
		code uint32
		want string
		ok   bool
	}{
		{0x0003, " ", true},
		{0x0004, "A", true},
		{0x0010, "fi", true},
		{0x0020, "a", true},
		{0x0022, "c", true},
		{0x0023, "", false},
		{0x0030, "X", true},
		{0x0032, "😀", true},
		{0x0005, "", false},
	}
	for _, tt := range tests {
		got, ok := cm.Lookup(tt.code, 2)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%04X) = %q, %v; want %q, %v", tt.code, got, ok, tt.want, tt.ok)
		}
	}

	// Width matters: a one-byte code 0x04 is not the two-byte code 0x0004.
	if _, ok := cm.Lookup(0x04, 1); ok {
		t.Error("one-byte lookup matched a two-byte mapping")
	}
}

func TestCMapRangeCarry(t *testing.T) {
	cm, err := ParseCMap([]byte("1 beginbfrange <01> <03> <00FE> endbfrange"))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := cm.Lookup(0x03, 1)
	if got != "Ā" {
		t.Errorf("Lookup(03) = %q, want U+0100", got)
	}
}

func TestCMapNextCode(t *testing.T) {
	data := `2 begincodespacerange
<00> <7F>
<8000> <FFFF>
endcodespacerange`
	cm, err := ParseCMap([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	in := []byte{0x41, 0x81, 0x02, 0x42}
	var got []uint32
	for len(in) > 0 {
		code, n := cm.NextCode(in)
		got = append(got, code)
		in = in[n:]
	}
	want := []uint32{0x41, 0x8102, 0x42}
	if len(got) != len(want) {
		t.Fatalf("codes = %X, want %X", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code %d = %X, want %X", i, got[i], want[i])
		}
	}
}

func TestCMapNextCodeWithoutCodespace(t *testing.T) {
	cm, err := ParseCMap([]byte("1 beginbfchar <0041> <0042> endbfchar"))
	if err != nil {
		t.Fatal(err)
	}
	code, n := cm.NextCode([]byte{0x00, 0x41, 0x00})
	if code != 0x41 || n != 2 {
		t.Errorf("NextCode = %X, %d; want 41, 2", code, n)
	}
	// A trailing odd byte is consumed alone.
	if _, n := cm.NextCode([]byte{0x00}); n != 1 {
		t.Errorf("NextCode short = %d, want 1", n)
	}
}

func TestParseCMapGlyphNameDestination(t *testing.T) {
	cm, err := ParseCMap([]byte("1 beginbfchar <01> /eacute endbfchar"))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := cm.Lookup(1, 1); got != "é" {
		t.Errorf("Lookup = %q, want é", got)
	}
}

func TestParseCMapMalformed(t *testing.T) {
	if _, err := ParseCMap([]byte("1 beginbfchar <01> [<0041> endbfchar")); err == nil {
		t.Error("expected error for unterminated array")
	}
}
