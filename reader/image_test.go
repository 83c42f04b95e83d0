package reader

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdftext/internal/pdftest"
)

var jpegStub = []byte("\xff\xd8\xff\xe0stub")

func imageDocument() *pdftest.Builder {
	b := pdftest.New()
	b.Add(pdftest.Stream("/Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8",
		[]byte{0, 128, 64, 255}))
	b.Add(pdftest.Stream("/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode",
		jpegStub))
	b.Add(pdftest.Stream("/Type /XObject /Subtype /Form /BBox [0 0 1 1]", nil))
	b.Add(pdftest.Stream("/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace [/Indexed /DeviceRGB 1 <000000ffffff>] /BitsPerComponent 8",
		[]byte{1}))
	b.Add(pdftest.FlateStream("/Type /XObject /Subtype /Image /Width 8 /Height 1 /ImageMask true", []byte{0xAA}))
	return b.SimpleDocument(pdftest.Page{
		Resources: "<< /XObject << /Im1 1 0 R /Im2 2 0 R /Fm1 3 0 R /Im3 4 0 R /Im4 5 0 R >> >>",
		Content:   "q 100 0 0 100 0 0 cm /Im1 Do Q",
	})
}

func TestPageImages(t *testing.T) {
	r, err := NewReader(bytes.NewReader(imageDocument().Bytes()))
	require.NoError(t, err)
	page, err := r.Page(0)
	require.NoError(t, err)

	images, err := r.PageImages(page)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, Image{Name: "Im1", Width: 2, Height: 2, Components: 1, BitsPerComponent: 8, Samples: []byte{0, 128, 64, 255}}, images[0])
	assert.Equal(t, "Im2", images[1].Name)
	assert.Equal(t, jpegStub, images[1].JPEG)
	assert.Nil(t, images[1].Samples)
	assert.Equal(t, Image{Name: "Im4", Width: 8, Height: 1, Components: 1, BitsPerComponent: 1, Samples: []byte{0xAA}}, images[2])
}

func TestPageImagesWithoutXObjects(t *testing.T) {
	r, err := NewReader(bytes.NewReader(helloDocument().Bytes()))
	require.NoError(t, err)
	page, err := r.Page(0)
	require.NoError(t, err)

	images, err := r.PageImages(page)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func grayPix(t *testing.T, img image.Image) []byte {
	t.Helper()
	gray, ok := img.(*image.Gray)
	require.True(t, ok, "got %T", img)
	return gray.Pix
}

func TestRasterGray(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		want []byte
	}{
		{"1 bit", Image{Width: 8, Height: 1, Components: 1, BitsPerComponent: 1, Samples: []byte{0xAA}},
			[]byte{255, 0, 255, 0, 255, 0, 255, 0}},
		{"1 bit padded rows", Image{Width: 3, Height: 2, Components: 1, BitsPerComponent: 1, Samples: []byte{0xA0, 0x40}},
			[]byte{255, 0, 255, 0, 255, 0}},
		{"2 bit", Image{Width: 4, Height: 1, Components: 1, BitsPerComponent: 2, Samples: []byte{0x1B}},
			[]byte{0, 85, 170, 255}},
		{"4 bit", Image{Width: 2, Height: 1, Components: 1, BitsPerComponent: 4, Samples: []byte{0xF0}},
			[]byte{255, 0}},
		{"8 bit", Image{Width: 2, Height: 1, Components: 1, BitsPerComponent: 8, Samples: []byte{7, 9}},
			[]byte{7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster, err := tt.img.Raster()
			require.NoError(t, err)
			assert.Equal(t, tt.want, grayPix(t, raster))
		})
	}
}

func TestRasterColor(t *testing.T) {
	rgb := Image{Width: 2, Height: 1, Components: 3, BitsPerComponent: 8, Samples: []byte{255, 0, 0, 0, 0, 255}}
	raster, err := rgb.Raster()
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, raster.(*image.RGBA).Pix)

	cmyk := Image{Width: 2, Height: 1, Components: 4, BitsPerComponent: 8, Samples: []byte{0, 0, 0, 0, 0, 0, 0, 255}}
	raster, err = cmyk.Raster()
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 255, 255, 0, 0, 0, 255}, raster.(*image.RGBA).Pix)
}

func TestRasterErrors(t *testing.T) {
	short := Image{Name: "Im9", Width: 4, Height: 4, Components: 1, BitsPerComponent: 8, Samples: []byte{1, 2}}
	_, err := short.Raster()
	assert.EqualError(t, err, "image Im9: 2 bytes of samples, need 16")

	deep := Image{Width: 1, Height: 1, Components: 3, BitsPerComponent: 16, Samples: make([]byte, 6)}
	_, err = deep.Raster()
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	zero := Image{Width: 1, Height: 1, Components: 1, BitsPerComponent: 0, Samples: []byte{0}}
	_, err = zero.Raster()
	assert.True(t, errors.Is(err, ErrUnsupportedImage))
}

func TestEncode(t *testing.T) {
	img := Image{Width: 2, Height: 2, Components: 1, BitsPerComponent: 8, Samples: []byte{0, 128, 64, 255}}
	data, err := img.Encode()
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), decoded.Bounds())
	assert.Equal(t, []byte{0, 128, 64, 255}, grayPix(t, decoded))

	jpeg := Image{JPEG: jpegStub}
	data, err = jpeg.Encode()
	require.NoError(t, err)
	assert.Equal(t, jpegStub, data)
}
