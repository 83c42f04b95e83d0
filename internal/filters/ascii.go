package filters

import "fmt"

// ASCIIHexDecode decodes hexadecimal data. Whitespace is skipped, '>' ends
// the data and an odd final digit is treated as if followed by 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false

	for _, c := range data {
		if isSpace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, ok := hexNibble(c)
		if !ok {
			return nil, fmt.Errorf("asciihex: invalid digit %q", c)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data. 'z' stands for four zero bytes and
// "~>" ends the data. A trailing partial group of n characters yields n-1
// bytes.
func ASCII85Decode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*4/5)
	var group [5]byte
	n := 0

	flush := func(count int) {
		for i := count; i < 5; i++ {
			group[i] = 'u' - '!'
		}
		var v uint32
		for _, d := range group {
			v = v*85 + uint32(d)
		}
		for i := 0; i < count-1; i++ {
			out = append(out, byte(v>>(24-8*i)))
		}
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isSpace(c):
			continue
		case c == '~':
			if n > 0 {
				flush(n)
			}
			return out, nil
		case c == 'z' && n == 0:
			out = append(out, 0, 0, 0, 0)
			continue
		case c < '!' || c > 'u':
			return nil, fmt.Errorf("ascii85: invalid character %q", c)
		}
		group[n] = c - '!'
		n++
		if n == 5 {
			flush(5)
			n = 0
		}
	}
	if n > 0 {
		flush(n)
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
