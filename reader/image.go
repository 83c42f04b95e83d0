package reader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/pages"
)

// ErrUnsupportedImage is returned by Image.Encode for sample layouts that
// cannot be turned into a raster.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Image is an image XObject of a page. JPEG data is kept encoded; every
// other image holds its decoded samples.
type Image struct {
	Name             string
	Width            int
	Height           int
	Components       int // colour components per sample
	BitsPerComponent int
	Samples          []byte
	JPEG             []byte
}

// PageImages returns the image XObjects named in the page's resources,
// sorted by name. Images whose streams cannot be decoded, or whose colour
// space has no direct raster form, are left out.
func (r *Reader) PageImages(page *pages.Page) ([]Image, error) {
	res, err := page.Resources()
	if errors.Is(err, pages.ErrNoResources) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	obj, err := r.Resolve(res.Get("XObject"))
	if err != nil {
		return nil, fmt.Errorf("xobject dictionary: %w", err)
	}
	xobjects, _ := obj.(core.Dict)

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	var images []Image
	for _, name := range names {
		obj, err := r.Resolve(xobjects[name])
		if err != nil {
			continue
		}
		stm, ok := obj.(*core.Stream)
		if !ok || stm.Dict.Get("Subtype") != core.Name("Image") {
			continue
		}
		img, err := r.image(name, stm)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *Reader) image(name string, stm *core.Stream) (Image, error) {
	img := Image{Name: name}
	w, _ := stm.Dict.Get("Width").(core.Int)
	h, _ := stm.Dict.Get("Height").(core.Int)
	if w <= 0 || h <= 0 {
		return img, errors.New("image without dimensions")
	}
	img.Width, img.Height = int(w), int(h)

	if mask, _ := stm.Dict.Get("ImageMask").(core.Bool); mask {
		img.Components, img.BitsPerComponent = 1, 1
	} else {
		img.BitsPerComponent = 8
		if bpc, ok := stm.Dict.Get("BitsPerComponent").(core.Int); ok {
			img.BitsPerComponent = int(bpc)
		}
		n, err := r.components(stm.Dict.Get("ColorSpace"))
		if err != nil {
			return img, err
		}
		img.Components = n
	}

	data, err := stm.Decode()
	if err != nil {
		return img, err
	}
	if f := stm.Filters(); len(f) > 0 {
		switch f[len(f)-1] {
		case "DCTDecode", "DCT":
			img.JPEG = data
			return img, nil
		case "JPXDecode":
			return img, ErrUnsupportedImage
		case "CCITTFaxDecode", "CCF":
			img.BitsPerComponent = 1
		}
	}
	img.Samples = data
	return img, nil
}

// components reports the number of colour components of a colour space.
// Indexed and other palette or pattern spaces are rejected.
func (r *Reader) components(obj core.Object) (int, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return 0, err
	}
	family := ""
	switch cs := obj.(type) {
	case nil:
		return 1, nil
	case core.Name:
		family = string(cs)
	case core.Array:
		if len(cs) == 0 {
			return 0, ErrUnsupportedImage
		}
		n, _ := cs[0].(core.Name)
		family = string(n)
		if family == "ICCBased" && len(cs) > 1 {
			profile, err := r.Resolve(cs[1])
			if err != nil {
				return 0, err
			}
			if stm, ok := profile.(*core.Stream); ok {
				if n, ok := stm.Dict.Get("N").(core.Int); ok {
					return int(n), nil
				}
			}
		}
	}
	switch family {
	case "DeviceGray", "CalGray", "G":
		return 1, nil
	case "DeviceRGB", "CalRGB", "Lab", "RGB":
		return 3, nil
	case "DeviceCMYK", "CMYK":
		return 4, nil
	}
	return 0, fmt.Errorf("%w: colour space %s", ErrUnsupportedImage, family)
}

// Encode returns the image as JPEG or PNG data for an OCR engine.
func (img Image) Encode() ([]byte, error) {
	if img.JPEG != nil {
		return img.JPEG, nil
	}
	raster, err := img.Raster()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, raster); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}

// Raster converts decoded samples into an image. Gray images of 1, 2, 4
// or 8 bits are supported, RGB and CMYK at 8 bits.
func (img Image) Raster() (image.Image, error) {
	bounds := image.Rect(0, 0, img.Width, img.Height)
	rowLen := (img.Width*img.Components*img.BitsPerComponent + 7) / 8
	if len(img.Samples) < rowLen*img.Height {
		return nil, fmt.Errorf("image %s: %d bytes of samples, need %d", img.Name, len(img.Samples), rowLen*img.Height)
	}

	switch {
	case img.Components == 1 && img.BitsPerComponent > 0 && img.BitsPerComponent <= 8 && 8%img.BitsPerComponent == 0:
		gray := image.NewGray(bounds)
		bpc := img.BitsPerComponent
		mask := byte(1<<bpc - 1)
		for y := 0; y < img.Height; y++ {
			row := img.Samples[y*rowLen:]
			for x := 0; x < img.Width; x++ {
				bit := x * bpc
				v := row[bit/8] >> (8 - bpc - bit%8) & mask
				gray.Pix[y*gray.Stride+x] = v * (255 / mask)
			}
		}
		return gray, nil

	case img.Components == 3 && img.BitsPerComponent == 8:
		rgba := image.NewRGBA(bounds)
		for i := 0; i < img.Width*img.Height; i++ {
			copy(rgba.Pix[i*4:], img.Samples[i*3:i*3+3])
			rgba.Pix[i*4+3] = 0xff
		}
		return rgba, nil

	case img.Components == 4 && img.BitsPerComponent == 8:
		rgba := image.NewRGBA(bounds)
		for i := 0; i < img.Width*img.Height; i++ {
			s := img.Samples[i*4:]
			r, g, b := color.CMYKToRGB(s[0], s[1], s[2], s[3])
			rgba.Pix[i*4], rgba.Pix[i*4+1], rgba.Pix[i*4+2], rgba.Pix[i*4+3] = r, g, b, 0xff
		}
		return rgba, nil
	}
	return nil, fmt.Errorf("%w: %d components at %d bits", ErrUnsupportedImage, img.Components, img.BitsPerComponent)
}
