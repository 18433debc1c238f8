// Package raster draws packed layouts into a sheet surface and cuts frames
// back out of one. Surfaces are *image.NRGBA so pixels survive the round
// trip without premultiplication loss.
package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Extensions lists the file extensions Decode understands.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// IsImageFile reports whether name has a decodable image extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode detects the image format and decodes data.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Load decodes data into an image descriptor. The id falls back to name.
func Load(id, name string, data []byte) (*sheet.Image, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, sheet.Wrap(sheet.ErrMissingImageData, err, "image %q", name)
	}
	if id == "" {
		id = name
	}
	nrgba := ToNRGBA(img)
	return &sheet.Image{
		ID:     id,
		Name:   name,
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pixels: nrgba,
	}, nil
}

// ToNRGBA returns img as an *image.NRGBA anchored at (0,0), copying only
// when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to w as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
