package font

import "testing"

func TestDecodeTextString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"pdfdoc", []byte("Report"), "Report"},
		{"pdfdoc high", []byte{0x93, 'x', 0xA0}, "ﬁx€"},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 0x48, 0x00, 0xE9}, "Hé"},
		{"utf16le", []byte{0xFF, 0xFE, 0x48, 0x00}, "H"},
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'o', 'k'}, "ok"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeTextString(tt.in); got != tt.want {
				t.Errorf("DecodeTextString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeUnicode(t *testing.T) {
	if got := NormalizeUnicode("e\u0301"); got != "\u00e9" {
		t.Errorf("NormalizeUnicode = %q, want precomposed é", got)
	}
}
