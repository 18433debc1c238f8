// Package pack lays out a set of images on a single sheet.
//
// Two algorithms are available: a deterministic shelf packer (Simple) and a
// maximal-rectangles packer with an auto-growing trial bin (MaxRects). Both
// return a sheet.Layout whose placements never overlap and are contained in
// [0,Width)×[0,Height), or a *sheet.Error of kind EMPTY_INPUT or
// CAPACITY_EXCEEDED. Nothing is kept between calls.
package pack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Algorithm selects the layout strategy.
type Algorithm string

const (
	AlgorithmSimple   Algorithm = "simple"
	AlgorithmMaxRects Algorithm = "maxrects"
)

// Logic selects how MaxRects scores candidate free rectangles.
type Logic string

const (
	// LogicMaxArea prefers the free rectangle with the least area left over.
	LogicMaxArea Logic = "max-area"
	// LogicMaxEdge prefers the free rectangle with the shortest leftover edge.
	LogicMaxEdge Logic = "max-edge"
)

const (
	DefaultMaxSize = 4096
	minSeedSide    = 64
)

// Options configures a packing run. Zero values fall back to the defaults
// documented on each field.
type Options struct {
	Algorithm     Algorithm // default AlgorithmMaxRects
	Logic         Logic     // default LogicMaxArea
	Padding       int       // gap between placements
	Border        int       // margin between placements and the bin edge (MaxRects only)
	MaxWidth      int       // default DefaultMaxSize
	MaxHeight     int       // default DefaultMaxSize
	PowerOfTwo    bool
	Square        bool
	AllowRotation bool // MaxRects only
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Algorithm: AlgorithmMaxRects,
		Logic:     LogicMaxArea,
		MaxWidth:  DefaultMaxSize,
		MaxHeight: DefaultMaxSize,
	}
}

// ParseAlgorithm maps a user-supplied name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "maxrects", "max-rects", "bin-packing":
		return AlgorithmMaxRects, nil
	case "simple", "shelf":
		return AlgorithmSimple, nil
	}
	return "", fmt.Errorf("unknown packing algorithm: %s", s)
}

// ParseLogic maps a user-supplied name to a Logic.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max-area", "area":
		return LogicMaxArea, nil
	case "max-edge", "edge":
		return LogicMaxEdge, nil
	}
	return "", fmt.Errorf("unknown packing logic: %s", s)
}

func (o Options) withDefaults() Options {
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmMaxRects
	}
	if o.Logic == "" {
		o.Logic = LogicMaxArea
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxSize
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxSize
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Border < 0 {
		o.Border = 0
	}
	return o
}

// Pack lays out images with the configured algorithm.
func Pack(images []*sheet.Image, opts Options) (*sheet.Layout, error) {
	opts = opts.withDefaults()
	switch opts.Algorithm {
	case AlgorithmSimple:
		return Simple(images, opts)
	case AlgorithmMaxRects:
		return MaxRects(images, opts)
	}
	return nil, fmt.Errorf("unknown packing algorithm: %s", opts.Algorithm)
}

// NextPowerOfTwo returns the smallest power of two >= v, or 0 for v <= 0.
func NextPowerOfTwo(v int) int {
	if v <= 0 {
		return 0
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// validate rejects empty input, missing descriptors and images that cannot
// fit the maximum sheet in any orientation.
func validate(images []*sheet.Image, opts Options, rotate bool) error {
	if len(images) == 0 {
		return sheet.Errorf(sheet.ErrEmptyInput, "no images to pack")
	}
	for i, img := range images {
		if img == nil {
			return sheet.Errorf(sheet.ErrMissingImageData, "image %d is nil", i)
		}
		if img.Width <= 0 || img.Height <= 0 {
			return sheet.Errorf(sheet.ErrMissingImageData, "image %q has empty size %dx%d", img.Name, img.Width, img.Height)
		}
		fits := img.Width <= opts.MaxWidth && img.Height <= opts.MaxHeight
		if !fits && rotate {
			fits = img.Height <= opts.MaxWidth && img.Width <= opts.MaxHeight
		}
		if !fits {
			return sheet.Errorf(sheet.ErrCapacityExceeded,
				"image %q (%dx%d) exceeds the maximum sheet size %dx%d",
				img.Name, img.Width, img.Height, opts.MaxWidth, opts.MaxHeight)
		}
	}
	return nil
}

// sortByArea orders images by descending area, keeping input order for ties.
func sortByArea(images []*sheet.Image) []*sheet.Image {
	sorted := make([]*sheet.Image, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})
	return sorted
}

// bounds returns the tight bounding box of all placements.
func bounds(placements []sheet.Placement) (int, int) {
	var w, h int
	for _, p := range placements {
		w = max(w, p.X+p.Width)
		h = max(h, p.Y+p.Height)
	}
	return w, h
}

// finalize applies square forcing and power-of-two rounding to the tight
// bounding box, clamped to the maximum sheet size. The result never shrinks
// below the tight box.
func finalize(placements []sheet.Placement, opts Options) (*sheet.Layout, error) {
	tightW, tightH := bounds(placements)
	w, h := max(tightW, 1), max(tightH, 1)

	if opts.Square {
		side := max(w, h)
		w, h = side, side
	}
	if opts.PowerOfTwo {
		w, h = NextPowerOfTwo(w), NextPowerOfTwo(h)
	}
	w = min(w, opts.MaxWidth)
	h = min(h, opts.MaxHeight)

	if opts.Square && w != h {
		side := min(w, h)
		if side < tightW || side < tightH {
			return nil, sheet.Errorf(sheet.ErrCapacityExceeded,
				"a square sheet of %dx%d cannot hold the %dx%d layout", side, side, tightW, tightH)
		}
		w, h = side, side
	}
	if tightW > opts.MaxWidth || tightH > opts.MaxHeight {
		return nil, sheet.Errorf(sheet.ErrCapacityExceeded,
			"layout %dx%d exceeds the maximum sheet size %dx%d", tightW, tightH, opts.MaxWidth, opts.MaxHeight)
	}

	return &sheet.Layout{Width: w, Height: h, Placements: placements}, nil
}
