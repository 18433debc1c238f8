package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Composite draws every placement of layout into a new transparent surface
// of the layout size. Rotated placements are drawn turned 90° clockwise, so
// the image's top-left corner lands on the footprint's top-right. Any
// placement without usable pixels aborts the whole composite.
func Composite(layout *sheet.Layout) (*image.NRGBA, error) {
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, sheet.Errorf(sheet.ErrEmptyInput, "invalid sheet size %dx%d", layout.Width, layout.Height)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))

	for _, p := range layout.Placements {
		img := p.Image
		if img == nil || img.Pixels == nil {
			name := "<nil>"
			if img != nil {
				name = img.Name
			}
			return nil, sheet.Errorf(sheet.ErrMissingImageData, "no pixel data for %s", name)
		}
		b := img.Pixels.Bounds()
		if b.Dx() != img.Width || b.Dy() != img.Height {
			return nil, sheet.Errorf(sheet.ErrMissingImageData,
				"pixel data for %q is %dx%d, descriptor says %dx%d", img.Name, b.Dx(), b.Dy(), img.Width, img.Height)
		}

		src := ToNRGBA(img.Pixels)
		if p.Rotated {
			// Rotate270 turns counter-clockwise by 270°, i.e. clockwise by 90°
			src = imaging.Rotate270(src)
		}
		if src.Rect.Dx() != p.Width || src.Rect.Dy() != p.Height {
			return nil, sheet.Errorf(sheet.ErrMissingImageData,
				"%q does not match its %dx%d footprint", img.Name, p.Width, p.Height)
		}
		// a layout from pack never does this; sizing is the packer's job
		if !p.Bounds().In(dst.Rect) {
			return nil, fmt.Errorf("placement of %q at %v lies outside the %dx%d sheet",
				img.Name, p.Bounds(), layout.Width, layout.Height)
		}

		blit(dst, src, p.X, p.Y)
	}

	return dst, nil
}

// blit copies src verbatim into dst with its top-left corner at (x, y).
// The caller guarantees the target rectangle lies inside dst.
func blit(dst, src *image.NRGBA, x, y int) {
	rowSize := src.Rect.Dx() * 4
	for row := 0; row < src.Rect.Dy(); row++ {
		si := row * src.Stride
		di := dst.PixOffset(x, y+row)
		copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
	}
}
