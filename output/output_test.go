package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf)
	require.NoError(t, s.Begin(Metadata{Title: "ignored"}))
	require.NoError(t, s.WritePage(1, "one\ntwo"))
	require.NoError(t, s.WritePage(2, ""))
	require.NoError(t, s.WritePage(3, "three"))
	require.NoError(t, s.End())
	assert.Equal(t, "one\ntwo\n\nthree\n", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTextSinkWriteError(t *testing.T) {
	err := NewTextSink(failWriter{}).WritePage(4, "x")
	assert.EqualError(t, err, "page 4: disk full")
}

func TestHTMLSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewHTMLSink(&buf, "UTF-8")
	require.NoError(t, s.Begin(Metadata{Title: "Report", Author: "A & B", Producer: "pdfgen"}))
	require.NoError(t, s.WritePage(1, "page one"))
	require.NoError(t, s.WritePage(2, "x < y"))
	require.NoError(t, s.End())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html><html><head>"), out)
	for _, want := range []string{
		`<meta charset="UTF-8"/>`,
		`<title>Report</title>`,
		`<meta name="Author" content="A &amp; B"/>`,
		`<meta name="Producer" content="pdfgen"/>`,
		`<body><pre>page one</pre><pre>x &lt; y</pre></body>`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Subject")
}

func TestHTMLSinkOrder(t *testing.T) {
	s := NewHTMLSink(&bytes.Buffer{}, "")
	assert.Error(t, s.WritePage(1, "early"))
	assert.Error(t, s.End())
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"UTF-8", "UTF-8"},
		{"utf-8", "UTF-8"},
		{"utf8", "UTF-8"},
		{"gbk", "GBK"},
		{" windows-1252 ", "windows-1252"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, enc.Name)
		})
	}

	_, err := LookupEncoding("klingon")
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
	_, err = LookupEncoding("")
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
}

func TestEncodingGBKRoundTrip(t *testing.T) {
	enc, err := LookupEncoding("GBK")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := enc.NewWriter(&buf)
	_, err = w.Write([]byte("中文 text\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NotEqual(t, "中文 text\n", buf.String())

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "中文 text\n", string(decoded))
}

func TestEncodingReplacesUnsupported(t *testing.T) {
	enc, err := LookupEncoding("ISO-8859-1")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := enc.NewWriter(&buf)
	_, err = w.Write([]byte("café 中"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.True(t, strings.HasPrefix(buf.String(), "caf\xe9 "))
	assert.Len(t, buf.Bytes(), 6)
}
