package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// OpaqueBounds returns the smallest rectangle holding every pixel with
// non-zero alpha, or an empty rectangle when the image is fully transparent.
func OpaqueBounds(img *image.NRGBA) image.Rectangle {
	minX, minY := img.Rect.Max.X, img.Rect.Max.Y
	maxX, maxY := img.Rect.Min.X-1, img.Rect.Min.Y-1

	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		row := img.PixOffset(img.Rect.Min.X, y)
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			if img.Pix[row+(x-img.Rect.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Trim crops the fully transparent border off img and records the original
// canvas size and the kept region on the returned descriptor. A fully
// transparent image keeps a single pixel at (0,0).
func Trim(img *sheet.Image) (*sheet.Image, error) {
	if img == nil || img.Pixels == nil {
		return nil, sheet.Errorf(sheet.ErrMissingImageData, "no pixel data to trim")
	}
	src := ToNRGBA(img.Pixels)
	source := sheet.Size{W: src.Rect.Dx(), H: src.Rect.Dy()}

	keep := OpaqueBounds(src)
	if keep.Empty() {
		keep = image.Rect(0, 0, 1, 1)
	}

	trimmed := *img
	trimmed.Source = source
	trimmed.Trim = sheet.Rect{X: keep.Min.X, Y: keep.Min.Y, W: keep.Dx(), H: keep.Dy()}
	trimmed.Width, trimmed.Height = keep.Dx(), keep.Dy()
	if keep == src.Rect {
		trimmed.Pixels = src
	} else {
		trimmed.Pixels = imaging.Crop(src, keep)
	}
	return &trimmed, nil
}
