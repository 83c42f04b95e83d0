package ocr

import (
	"errors"
	"testing"
)

type scripted map[string]string

func (s scripted) Recognize(image []byte) (string, error) {
	if string(image) == "bad" {
		return "", errors.New("unreadable")
	}
	return s[string(image)], nil
}

func TestRecognizePage(t *testing.T) {
	rec := scripted{"a": "  first line\n", "b": "", "c": "second"}

	tests := []struct {
		name    string
		images  []string
		want    string
		wantErr string
	}{
		{"none", nil, "", ""},
		{"joins non-empty", []string{"a", "b", "c"}, "first line\nsecond", ""},
		{"stops at failure", []string{"a", "bad", "c"}, "first line", "image 2: unreadable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := make([][]byte, len(tt.images))
			for i, s := range tt.images {
				images[i] = []byte(s)
			}
			got, err := RecognizePage(rec, images)
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || err.Error() != tt.wantErr):
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.languages(); len(got) != 1 || got[0] != "eng" {
		t.Errorf("languages = %v", got)
	}
	if cfg.mode() != PSMAuto {
		t.Errorf("mode = %d", cfg.mode())
	}

	cfg = Config{Languages: []string{"chi_sim", "eng"}, Mode: PSMSparseText}
	if got := cfg.languages(); len(got) != 2 {
		t.Errorf("languages = %v", got)
	}
	if cfg.mode() != PSMSparseText {
		t.Errorf("mode = %d", cfg.mode())
	}
}

func TestLanguagesFor(t *testing.T) {
	tests := []struct {
		tag  string
		want []string
	}{
		{"en-US", []string{"eng"}},
		{"de", []string{"deu", "eng"}},
		{"zh-CN", []string{"chi_sim", "eng"}},
		{"zh-Hans", []string{"chi_sim", "eng"}},
		{"zh-TW", []string{"chi_tra", "eng"}},
		{"zh-Hant-HK", []string{"chi_tra", "eng"}},
		{"ja-JP", []string{"jpn", "eng"}},
		{"sw", nil},
		{"", nil},
		{"not a tag!", nil},
	}
	for _, tt := range tests {
		got := LanguagesFor(tt.tag)
		if len(got) != len(tt.want) {
			t.Errorf("LanguagesFor(%q) = %v, want %v", tt.tag, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("LanguagesFor(%q) = %v, want %v", tt.tag, got, tt.want)
				break
			}
		}
	}
}
