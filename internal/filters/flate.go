package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and reverses any predictor named in params.
// Streams written without the zlib header are accepted as raw deflate.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	out, err := inflate(data)
	if err != nil {
		return nil, err
	}

	predictor := params.Int("Predictor", 1)
	if predictor <= 1 {
		return out, nil
	}
	out, err = unpredict(out, predictor, params)
	if err != nil {
		return nil, fmt.Errorf("predictor %d: %w", predictor, err)
	}
	return out, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err == nil {
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err == nil || len(out) > 0 && err == io.ErrUnexpectedEOF {
			// Truncated streams are common; keep what was recovered.
			return out, nil
		}
		return nil, fmt.Errorf("inflate: %w", err)
	}

	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	out, rawErr := io.ReadAll(fr)
	if rawErr != nil && len(out) == 0 {
		return nil, fmt.Errorf("inflate: %w", rawErr)
	}
	return out, nil
}

// NewFlateWriter returns a writer that zlib-compresses everything written to
// it into w. The result decodes with FlateDecode and no parameters. Close
// must be called to flush the final block.
func NewFlateWriter(w io.Writer) io.WriteCloser {
	return zlib.NewWriter(w)
}

// FlateEncode compresses data in one call.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := NewFlateWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
