package text

import "golang.org/x/text/unicode/bidi"

// Direction is the dominant writing direction of a run of text.
type Direction int

const (
	LTR Direction = iota
	RTL
	Neutral
)

func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	}
	return "Unknown"
}

// DetectDirection counts strong left-to-right and right-to-left characters
// by their Unicode bidi class. Text with neither is Neutral; ties go to LTR.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	}
	return LTR
}

// CharDirection returns the strong direction of r, or Neutral for digits,
// punctuation, spaces and other weak or neutral classes.
func CharDirection(r rune) Direction {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.L:
		return LTR
	case bidi.R, bidi.AL:
		return RTL
	}
	return Neutral
}
