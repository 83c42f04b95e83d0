package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for character set names that neither the
// IANA registry nor the WHATWG encoding list knows.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoding is a resolved output character set.
type Encoding struct {
	Name string // IANA name, suitable for an HTML charset declaration
	enc  encoding.Encoding
}

// LookupEncoding resolves a character set name. IANA names and aliases are
// tried first, then WHATWG labels such as "utf8" or "gb2312".
func LookupEncoding(name string) (Encoding, error) {
	name = strings.TrimSpace(name)
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		if enc, err = htmlindex.Get(name); err != nil {
			return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return Encoding{Name: canonical, enc: enc}, nil
}

// NewWriter returns a writer encoding UTF-8 input into e. Characters e
// cannot represent are replaced rather than failing the write. Close
// flushes buffered output but does not close w.
func (e Encoding) NewWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, encoding.ReplaceUnsupported(e.enc.NewEncoder()))
}
