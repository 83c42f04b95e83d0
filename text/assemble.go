package text

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// lineTolerance is the fraction of fragment height within which two
	// baselines count as the same line.
	lineTolerance = 0.5
	// spaceGap is the fraction of font size a horizontal gap must exceed
	// to become a space.
	spaceGap = 0.3
)

// Assemble joins fragments into text. With sortByPosition the fragments
// are ordered top to bottom, then left to right (right to left for lines
// that are mostly RTL); otherwise content stream order is kept. A line
// break is written when the baseline moves, a space when the gap between
// fragments on a line is wide enough.
func Assemble(frags []TextFragment, sortByPosition bool) string {
	if len(frags) == 0 {
		return ""
	}
	var lines [][]TextFragment
	if sortByPosition {
		lines = positionLines(frags)
	} else {
		lines = streamLines(frags)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLine(&b, line)
	}
	return b.String()
}

// streamLines breaks frags into lines wherever the baseline moves between
// consecutive fragments.
func streamLines(frags []TextFragment) [][]TextFragment {
	var lines [][]TextFragment
	var cur []TextFragment
	for _, f := range frags {
		if len(cur) > 0 {
			last := cur[len(cur)-1]
			if math.Abs(f.Y-last.Y) > math.Max(f.Height, last.Height)*lineTolerance {
				lines = append(lines, cur)
				cur = nil
			}
		}
		cur = append(cur, f)
	}
	return append(lines, cur)
}

// positionLines buckets frags into lines from the top of the page down,
// then orders each line by X. A line is anchored at the baseline of its
// highest fragment, so the result does not depend on stream order except
// for fragments at identical positions.
func positionLines(frags []TextFragment) [][]TextFragment {
	ordered := make([]TextFragment, len(frags))
	copy(ordered, frags)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Y > ordered[j].Y })

	var lines [][]TextFragment
	var cur []TextFragment
	var baseline, height float64
	for _, f := range ordered {
		if len(cur) > 0 && baseline-f.Y > math.Max(height, f.Height)*lineTolerance {
			lines = append(lines, cur)
			cur = nil
		}
		if len(cur) == 0 {
			baseline, height = f.Y, f.Height
		}
		height = math.Max(height, f.Height)
		cur = append(cur, f)
	}
	lines = append(lines, cur)

	for _, line := range lines {
		if lineDirection(line) == RTL {
			sort.SliceStable(line, func(i, j int) bool { return line[i].X > line[j].X })
		} else {
			sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		}
	}
	return lines
}

func lineDirection(line []TextFragment) Direction {
	ltr, rtl := 0, 0
	for _, f := range line {
		switch f.Direction {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	if rtl > ltr {
		return RTL
	}
	return LTR
}

func writeLine(b *strings.Builder, line []TextFragment) {
	rtl := lineDirection(line) == RTL
	for i, f := range line {
		if i > 0 {
			prev := line[i-1]
			gap := f.X - (prev.X + prev.Width)
			if rtl {
				gap = prev.X - (f.X + f.Width)
			}
			if gap > f.FontSize*spaceGap && !endsWithSpace(prev.Text) && !startsWithSpace(f.Text) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f.Text)
	}
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
