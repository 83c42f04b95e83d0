package font

import "strings"

// Advance widths, in 1/1000 em, of the printable ASCII range (32..126) for
// the standard 14 fonts a PDF may use without embedding or /Widths.
var helvetica = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldLetters = [2][26]int{
	{722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611},
	{556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611, 611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500},
}

var timesLetters = [2][26]int{
	{722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722, 556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611},
	{444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500, 500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444},
}

var timesBoldLetters = [2][26]int{
	{722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778, 611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667},
	{500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500, 556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444},
}

// standardWidth returns the width of code in a standard 14 font, or false
// when baseFont is not one of them.
func standardWidth(baseFont string, code int) (float64, bool) {
	name := strings.ToLower(stripSubset(baseFont))
	bold := strings.Contains(name, "bold")
	switch {
	case strings.HasPrefix(name, "courier"):
		return 600, true
	case strings.HasPrefix(name, "helvetica"), strings.HasPrefix(name, "arial"):
		if bold {
			if w, ok := letterWidth(helveticaBoldLetters, code); ok {
				return w, true
			}
		}
		return asciiWidth(helvetica, code, 556), true
	case strings.HasPrefix(name, "times"):
		table := timesLetters
		if bold {
			table = timesBoldLetters
		}
		if w, ok := letterWidth(table, code); ok {
			return w, true
		}
		if code == ' ' {
			return 250, true
		}
		return 500, true
	case strings.HasPrefix(name, "symbol"), strings.HasPrefix(name, "zapfdingbats"):
		return 500, true
	}
	return 0, false
}

func letterWidth(t [2][26]int, code int) (float64, bool) {
	switch {
	case code >= 'A' && code <= 'Z':
		return float64(t[0][code-'A']), true
	case code >= 'a' && code <= 'z':
		return float64(t[1][code-'a']), true
	}
	return 0, false
}

func asciiWidth(t [95]int, code, def int) float64 {
	if code >= 32 && code <= 126 {
		return float64(t[code-32])
	}
	return float64(def)
}

// stripSubset removes a six-letter subset tag such as "ABCDEF+".
func stripSubset(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}
