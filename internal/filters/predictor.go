package filters

import "fmt"

func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	columns := params.Int("Columns", 1)
	colors := params.Int("Colors", 1)
	bpc := params.Int("BitsPerComponent", 8)
	if columns < 1 || colors < 1 || bpc < 1 {
		return nil, fmt.Errorf("invalid geometry columns=%d colors=%d bpc=%d", columns, colors, bpc)
	}

	bpp := (colors*bpc + 7) / 8
	rowLen := (columns*colors*bpc + 7) / 8

	switch {
	case predictor == 2:
		if bpc != 8 {
			return nil, fmt.Errorf("tiff predictor needs 8 bits per component, got %d", bpc)
		}
		return tiffUnpredict(data, rowLen, bpp), nil
	case predictor >= 10 && predictor <= 15:
		return pngUnpredict(data, rowLen, bpp)
	}
	return nil, fmt.Errorf("unsupported predictor")
}

// tiffUnpredict undoes horizontal differencing in place on a copy.
func tiffUnpredict(data []byte, rowLen, bpp int) []byte {
	out := append([]byte(nil), data...)
	for start := 0; start+rowLen <= len(out); start += rowLen {
		row := out[start : start+rowLen]
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	}
	return out
}

// pngUnpredict decodes rows that each begin with a PNG filter-type byte.
// A short final row is decoded as far as it goes.
func pngUnpredict(data []byte, rowLen, bpp int) ([]byte, error) {
	stride := rowLen + 1
	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)

	for start := 0; start < len(data); start += stride {
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		kind := data[start]
		cur := append([]byte(nil), data[start+1:end]...)

		for i := range cur {
			var left, up, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]

			switch kind {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown png filter %d", start/stride, kind)
			}
		}

		out = append(out, cur...)
		copy(prev, cur)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
