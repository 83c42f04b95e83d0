package ocr

import "golang.org/x/text/language"

var tesseractCodes = map[string]string{
	"ar": "ara",
	"de": "deu",
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"he": "heb",
	"hi": "hin",
	"it": "ita",
	"ja": "jpn",
	"ko": "kor",
	"nl": "nld",
	"pl": "pol",
	"pt": "por",
	"ru": "rus",
	"sv": "swe",
	"tr": "tur",
	"uk": "ukr",
	"vi": "vie",
}

// LanguagesFor maps a BCP 47 tag, as found in a document catalog's /Lang
// entry, to Tesseract language codes. English is added as a second
// language since scanned documents mix in Latin text. Unknown or
// unparsable tags give nil.
func LanguagesFor(tag string) []string {
	t, err := language.Parse(tag)
	if err != nil {
		return nil
	}
	base, _ := t.Base()

	code := tesseractCodes[base.String()]
	if base.String() == "zh" {
		code = "chi_sim"
		if script, _ := t.Script(); script.String() == "Hant" {
			code = "chi_tra"
		}
	}
	switch code {
	case "":
		return nil
	case "eng":
		return []string{"eng"}
	}
	return []string{code, "eng"}
}
