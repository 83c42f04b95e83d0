//go:build !ocr

package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdftext/internal/pdftest"
)

func TestOCRWithoutEngine(t *testing.T) {
	b := pdftest.New().SimpleDocument(pdftest.Page{Content: ""}, pdftest.Page{Content: ""})

	text, warnings, err := FromReader(newReader(t, b.Bytes())).OCR().Text()
	require.NoError(t, err)
	assert.Equal(t, "\n\n", text)
	require.Len(t, warnings, 1)
	assert.Equal(t, 0, warnings[0].Page)
	assert.Equal(t, OCRFailed, warnings[0].Kind)
	assert.Equal(t, "ocr failed: ocr support not enabled; rebuild with -tags ocr", warnings[0].String())
}
