package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/pdftext/internal/filters"
)

// Decode applies the stream's /Filter chain and returns the decoded bytes.
// Image codecs (DCT, JPX) are passed through unchanged.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}
	data := s.Data
	for i, name := range names {
		data, err = decodeFilter(name, data, params[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return data, nil
}

// Filters returns the names of the stream's filters in application order.
func (s *Stream) Filters() []string {
	names, _, _ := s.filterChain()
	return names
}

func (s *Stream) filterChain() ([]string, []filters.Params, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, obj := range f {
			n, ok := obj.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is %s, not a name", i, obj.Type())
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid /Filter of type %s", f.Type())
	}

	params := make([]filters.Params, len(names))
	switch dp := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = toParams(dp)
	case Array:
		for i := 0; i < len(dp) && i < len(params); i++ {
			if d, ok := dp[i].(Dict); ok {
				params[i] = toParams(d)
			}
		}
	}
	return names, params, nil
}

func decodeFilter(name string, data []byte, params filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, params)
	case "DCTDecode", "DCT", "JPXDecode":
		return data, nil
	}
	return nil, fmt.Errorf("unsupported filter")
}

func toParams(d Dict) filters.Params {
	p := make(filters.Params, len(d))
	for k, v := range d {
		switch o := v.(type) {
		case Int:
			p[k] = int(o)
		case Real:
			p[k] = float64(o)
		case Bool:
			p[k] = bool(o)
		case Name:
			p[k] = string(o)
		case String:
			p[k] = string(o)
		}
	}
	return p
}

// NewFlateStream copies r through a Flate encoder and returns a stream whose
// dictionary carries /Filter /FlateDecode and the encoded /Length. Nothing
// is returned if the copy fails part way.
func NewFlateStream(r io.Reader) (*Stream, error) {
	var buf bytes.Buffer
	w := filters.NewFlateWriter(&buf)
	if _, err := io.Copy(w, r); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &Stream{
		Dict: Dict{
			"Filter": Name("FlateDecode"),
			"Length": Int(buf.Len()),
		},
		Data: buf.Bytes(),
	}, nil
}
