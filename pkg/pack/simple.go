package pack

import "github.com/kiesman99/spritepack/pkg/sheet"

// Simple places images row by row in descending area order, opening a new
// row when the next image would cross MaxWidth. It never rotates.
func Simple(images []*sheet.Image, opts Options) (*sheet.Layout, error) {
	opts = opts.withDefaults()
	if err := validate(images, opts, false); err != nil {
		return nil, err
	}

	var (
		x, y      int
		rowHeight int
	)
	placements := make([]sheet.Placement, 0, len(images))
	for _, img := range sortByArea(images) {
		if x > 0 && x+img.Width > opts.MaxWidth {
			x = 0
			y += rowHeight + opts.Padding
			rowHeight = 0
		}

		placements = append(placements, sheet.Placement{
			Image:  img,
			X:      x,
			Y:      y,
			Width:  img.Width,
			Height: img.Height,
		})

		rowHeight = max(rowHeight, img.Height)
		x += img.Width + opts.Padding
	}

	return finalize(placements, opts)
}
