package raster

import (
	"context"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Sprite is one frame cut out of a sheet.
type Sprite struct {
	Frame sheet.Frame
	Image *image.NRGBA
}

// Extract reverses Composite for one frame: it samples the frame's
// footprint from the sheet, undoes the 90° rotation and places the result
// at its trim offset inside a canvas of the original (untrimmed) size.
func Extract(atlas image.Image, frame *sheet.Frame) (*image.NRGBA, error) {
	canvas := frame.CanvasSize()
	if canvas.W <= 0 || canvas.H <= 0 {
		return nil, sheet.Errorf(sheet.ErrExtractionFailed, "frame %q has empty canvas %dx%d", frame.Name, canvas.W, canvas.H)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, sheet.Errorf(sheet.ErrExtractionFailed, "frame %q has empty size %dx%d", frame.Name, frame.Width, frame.Height)
	}

	fp := frame.Footprint()
	ab := atlas.Bounds()
	region := image.Rect(fp.X, fp.Y, fp.X+fp.W, fp.Y+fp.H).Add(ab.Min)
	if !region.In(ab) {
		return nil, sheet.Errorf(sheet.ErrExtractionFailed,
			"frame %q footprint %v lies outside the %dx%d sheet", frame.Name, region, ab.Dx(), ab.Dy())
	}

	src := imaging.Crop(atlas, region)
	if frame.Rotated {
		src = imaging.Rotate90(src)
	}

	off := frame.Offset()
	target := image.Rect(off.X, off.Y, off.X+src.Rect.Dx(), off.Y+src.Rect.Dy())
	dst := image.NewNRGBA(image.Rect(0, 0, canvas.W, canvas.H))
	if !target.In(dst.Rect) {
		return nil, sheet.Errorf(sheet.ErrExtractionFailed,
			"frame %q region %v does not fit its %dx%d canvas", frame.Name, target, canvas.W, canvas.H)
	}

	blit(dst, src, off.X, off.Y)
	return dst, nil
}

// Unpack extracts every frame of cfg from atlas in parallel. The result keeps
// the frame order of cfg; a single failing frame fails the whole batch. The
// atlas must not be modified while Unpack runs.
func Unpack(ctx context.Context, atlas image.Image, cfg *sheet.Config) ([]Sprite, error) {
	if len(cfg.Frames) == 0 {
		return nil, sheet.Errorf(sheet.ErrInvalidConfig, "manifest has no frames")
	}

	sprites := make([]Sprite, len(cfg.Frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range cfg.Frames {
		i, frame := i, cfg.Frames[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := Extract(atlas, &frame)
			if err != nil {
				return err
			}
			sprites[i] = Sprite{Frame: frame, Image: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sprites, nil
}
