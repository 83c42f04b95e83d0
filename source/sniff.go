package source

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNotPDF is returned when a server answers with a document that is
// recognisably something else, such as a login page.
var ErrNotPDF = errors.New("not a PDF document")

// Kind is the format guessed from the first bytes of a download.
type Kind int

const (
	// Unknown covers PDFs with leading junk as well as unrecognised data.
	Unknown Kind = iota
	PDF
	HTML
	ZIP
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "PDF"
	case HTML:
		return "HTML"
	case ZIP:
		return "ZIP"
	default:
		return "unknown"
	}
}

// Sniff inspects the magic bytes of data.
func Sniff(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return PDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return ZIP
	case looksLikeHTML(data):
		return HTML
	}
	return Unknown
}

func looksLikeHTML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) > 512 {
		data = data[:512]
	}
	upper := bytes.ToUpper(data)
	if bytes.HasPrefix(upper, []byte("<!DOCTYPE HTML")) || bytes.HasPrefix(upper, []byte("<HTML")) {
		return true
	}
	return bytes.HasPrefix(upper, []byte("<?XML")) && bytes.Contains(upper, []byte("<HTML"))
}

// checkDownload rejects responses that are certainly not PDFs. Anything
// else is left to the PDF reader, which tolerates bytes before the header.
func checkDownload(rawURL string, data []byte) error {
	if k := Sniff(data); k == HTML || k == ZIP {
		return fmt.Errorf("get %s: %w: server sent %s", rawURL, ErrNotPDF, k)
	}
	return nil
}
