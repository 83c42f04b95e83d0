package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/tsawler/pdftext/internal/pdftest"
)

const songCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0001> <4E2D>
<0002> <6587>
endbfchar
endcmap
end
end
`

// fixture writes a two-page document whose Identity-H font SimSun has no
// ToUnicode, and a CMap directory that can repair it.
func fixture(t *testing.T) (pdfPath, cmapDir string) {
	t.Helper()
	b := pdftest.New()
	b.Add("<< /Type /Font /Subtype /Type0 /BaseFont /SimSun /Encoding /Identity-H /DescendantFonts [2 0 R] >>")
	b.Add("<< /Type /Font /Subtype /CIDFontType2 /BaseFont /SimSun /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> >>")
	info := b.Add("<< /Title (Notice) >>")
	b.SetInfo(info)
	res := "<< /Font << /F1 1 0 R >> >>"
	b.SimpleDocument(
		pdftest.Page{Resources: res, Content: "BT /F1 12 Tf 72 700 Td <00010002> Tj ET"},
		pdftest.Page{Resources: res, Content: "BT /F1 12 Tf 72 700 Td <0002> Tj ET"},
	)

	dir := t.TempDir()
	pdfPath = filepath.Join(dir, "notice.pdf")
	require.NoError(t, os.WriteFile(pdfPath, b.Bytes(), 0o644))
	cmapDir = filepath.Join(dir, "cmaps")
	require.NoError(t, os.Mkdir(cmapDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cmapDir, "to-unicode-SimSun"), []byte(songCMap), 0o644))
	return pdfPath, cmapDir
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunExtractsRepairedText(t *testing.T) {
	pdfPath, cmapDir := fixture(t)

	code, stdout, stderr := execute("--file", pdfPath, "--cmap", cmapDir)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "中文\n文\n", stdout)
	assert.Empty(t, stderr)
}

func TestRunPageSelection(t *testing.T) {
	pdfPath, cmapDir := fixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"start", []string{"--start", "2"}, "文\n"},
		{"end", []string{"--end", "1"}, "中文\n"},
		{"end clamped", []string{"--start", "2", "--end", "40"}, "文\n"},
		{"empty range", []string{"--start", "2", "--end", "1"}, ""},
		{"end zero", []string{"--end", "0"}, ""},
		{"pages override range", []string{"--start", "2", "--pages", "1"}, "中文\n"},
		{"pages list", []string{"--pages", "2, 1", "--pages", "7"}, "中文\n文\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--file", pdfPath, "--cmap", cmapDir}, tt.args...)
			code, stdout, stderr := execute(args...)
			require.Equal(t, 0, code, stderr)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestRunPagesSpaceSeparated(t *testing.T) {
	pdfPath, cmapDir := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"flags after pages", []string{"--file", pdfPath, "--pages", "2", "1", "--cmap", cmapDir}},
		{"equals form", []string{"--file", pdfPath, "--pages=2", "1", "--cmap", cmapDir}},
		{"pages last", []string{"--file", pdfPath, "--cmap", cmapDir, "--pages", "2", "1"}},
		{"repeated", []string{"--pages", "2", "--file", pdfPath, "--pages", "1", "--cmap", cmapDir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(tt.args...)
			require.Equal(t, 0, code, stderr)
			assert.Equal(t, "中文\n文\n", stdout)
		})
	}
}

func TestRunEncodedOutputFile(t *testing.T) {
	pdfPath, cmapDir := fixture(t)
	outPath := filepath.Join(t.TempDir(), "out.txt")

	code, stdout, stderr := execute("--file", pdfPath, "--cmap", cmapDir, "--encoding", "GBK", "--out", outPath)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	require.NoError(t, err)
	assert.Equal(t, "中文\n文\n", string(decoded))
}

func TestRunHTML(t *testing.T) {
	pdfPath, cmapDir := fixture(t)

	code, stdout, stderr := execute("--file", pdfPath, "--cmap", cmapDir, "--html")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `<meta charset="UTF-8"/><title>Notice</title>`)
	assert.Contains(t, stdout, "<pre>中文</pre><pre>文</pre>")
}

func TestRunMissingCMapIsQuietUnlessVerbose(t *testing.T) {
	pdfPath, _ := fixture(t)
	empty := t.TempDir()

	code, stdout, stderr := execute("--file", pdfPath, "--cmap", empty)
	require.Equal(t, 0, code)
	assert.Equal(t, "\n\n", stdout)
	assert.Empty(t, stderr)

	code, _, stderr = execute("--file", pdfPath, "--cmap", empty, "--verbose")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "page 1: missing cmap: F1: no ToUnicode source for base font SimSun")
}

func TestRunNoRepair(t *testing.T) {
	pdfPath, cmapDir := fixture(t)

	code, stdout, _ := execute("--file", pdfPath, "--cmap", cmapDir, "--no-repair")
	require.Equal(t, 0, code)
	assert.Equal(t, "\n\n", stdout)
}

func TestRunErrors(t *testing.T) {
	pdfPath, _ := fixture(t)

	code, _, stderr := execute()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "--file is required")

	code, _, stderr = execute("--file", pdfPath, "--pages", "one")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `invalid page number "one"`)

	code, _, stderr = execute("--file", pdfPath, "report.pdf")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unexpected argument "report.pdf"`)

	code, _, stderr = execute("--file", pdfPath, "--pages", "1", "two", "--sort")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unexpected argument "two"`)

	code, _, stderr = execute("--file", pdfPath, "--encoding", "klingon")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown encoding")

	code, _, stderr = execute("--file", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "extraction failed")
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := execute("--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "pdftext dev\n", stdout)
}

func TestPageListSet(t *testing.T) {
	var p pageList
	require.NoError(t, p.Set("1,3 5"))
	require.NoError(t, p.Set("2"))
	assert.Equal(t, pageList{1, 3, 5, 2}, p)
	assert.Equal(t, "1,3,5,2", p.String())
	assert.Error(t, p.Set(" , "))
	assert.Error(t, p.Set("4,x"))
	assert.Equal(t, pageList{1, 3, 5, 2}, p, "a failed Set keeps earlier pages only")
}
