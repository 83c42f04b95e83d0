package font

import "testing"

func TestGlyphRune(t *testing.T) {
	tests := []struct {
		name string
		want rune
		ok   bool
	}{
		{"A", 'A', true},
		{"space", ' ', true},
		{"quoteright", '’', true},
		{"fi", 'ﬁ', true},
		{"eacute", 'é', true},
		{"Udieresis", 'Ü', true},
		{"ccedilla", 'ç', true},
		{"uni20AC", '€', true},
		{"u1F600", '😀', true},
		{"a.sc", 'a', true},
		{"g123", 0, false},
		{".notdef", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := GlyphRune(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GlyphRune(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
