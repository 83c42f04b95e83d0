package font

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// glyphNames covers the Adobe Glyph List names that appear in simple-font
// /Differences arrays in practice.
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "parenleft": '(', "parenright": ')',
	"asterisk": '*', "plus": '+', "comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>', "question": '?',
	"at": '@', "bracketleft": '[', "backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„', "guilsinglleft": '‹', "guilsinglright": '›',
	"guillemotleft": '«', "guillemotright": '»',
	"endash": '–', "emdash": '—', "bullet": '•', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡', "perthousand": '‰', "trademark": '™',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ',
	"Euro": '€', "florin": 'ƒ', "circumflex": 'ˆ', "tilde": '˜',
	"minus": '−', "fraction": '⁄', "dotlessi": 'ı', "caron": 'ˇ',
	"breve": '˘', "dotaccent": '˙', "ring": '˚', "ogonek": '˛', "hungarumlaut": '˝',
	"exclamdown": '¡', "cent": '¢', "sterling": '£', "currency": '¤', "yen": '¥',
	"brokenbar": '¦', "section": '§', "dieresis": '¨', "copyright": '©',
	"ordfeminine": 'ª', "logicalnot": '¬', "registered": '®', "macron": '¯',
	"degree": '°', "plusminus": '±', "twosuperior": '²', "threesuperior": '³',
	"acute": '´', "mu": 'µ', "paragraph": '¶', "periodcentered": '·',
	"cedilla": '¸', "onesuperior": '¹', "ordmasculine": 'º', "onequarter": '¼',
	"onehalf": '½', "threequarters": '¾', "questiondown": '¿', "multiply": '×',
	"divide": '÷', "germandbls": 'ß', "AE": 'Æ', "ae": 'æ', "OE": 'Œ', "oe": 'œ',
	"Oslash": 'Ø', "oslash": 'ø', "Eth": 'Ð', "eth": 'ð', "Thorn": 'Þ', "thorn": 'þ',
	"Lslash": 'Ł', "lslash": 'ł', "Scaron": 'Š', "scaron": 'š', "Zcaron": 'Ž',
	"zcaron": 'ž', "Ydieresis": 'Ÿ', "nbspace": ' ', "sfthyphen": '­',
}

// accented letters follow the pattern base+accent, e.g. "eacute".
var accents = map[string]rune{
	"grave": '̀', "acute": '́', "circumflex": '̂', "tilde": '̃',
	"dieresis": '̈', "ring": '̊', "cedilla": '̧', "caron": '̌',
}

// GlyphRune maps a glyph name to its rune. It understands the glyph list
// above, single letters, accented Latin letters, and the uniXXXX and
// uXXXX[XX] forms. Suffixes after a period (".sc", ".alt") are ignored.
func GlyphRune(name string) (rune, bool) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if len(name) == 1 && (name[0] >= 'A' && name[0] <= 'Z' || name[0] >= 'a' && name[0] <= 'z') {
		return rune(name[0]), true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil && v <= 0x10FFFF {
			return rune(v), true
		}
	}
	if len(name) > 1 {
		base := name[0]
		if accent, ok := accents[name[1:]]; ok && (base >= 'A' && base <= 'Z' || base >= 'a' && base <= 'z') {
			if r, ok := compose(rune(base), accent); ok {
				return r, true
			}
		}
	}
	return 0, false
}

// compose returns the precomposed form of base followed by a combining mark.
func compose(base, mark rune) (rune, bool) {
	s := norm.NFC.String(string([]rune{base, mark}))
	r, n := utf8.DecodeRuneInString(s)
	return r, n == len(s)
}
