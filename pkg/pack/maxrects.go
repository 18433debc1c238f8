package pack

import (
	"math"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// MaxRects packs images into a single trial bin using the maximal-rectangles
// heuristic. The bin starts at the square root of the total image area
// (at least 64px per side) and doubles until every image fits or the
// maximum size is reached, in which case CAPACITY_EXCEEDED is returned.
func MaxRects(images []*sheet.Image, opts Options) (*sheet.Layout, error) {
	return maxRects(images, opts, nil)
}

// maxRects reports every trial bin size to trial when it is not nil.
func maxRects(images []*sheet.Image, opts Options, trial func(w, h int)) (*sheet.Layout, error) {
	opts = opts.withDefaults()
	if err := validate(images, opts, opts.AllowRotation); err != nil {
		return nil, err
	}

	sorted := sortByArea(images)

	total := 0
	for _, img := range sorted {
		total += img.Area()
	}
	seed := max(minSeedSide, int(math.Ceil(math.Sqrt(float64(total)))))

	w := min(opts.MaxWidth, seed)
	h := min(opts.MaxHeight, seed)
	if opts.Square {
		h = min(opts.MaxHeight, w)
	}

	for {
		if trial != nil {
			trial(w, h)
		}
		b := newBin(w, h, opts)
		placements, failed := b.insertAll(sorted)
		if failed == nil {
			return finalize(placements, opts)
		}

		dx, dy := b.shortfall(failed)
		nw, nh, grew := grow(w, h, dx, dy, opts)
		if !grew {
			break
		}
		w, h = nw, nh
	}

	return nil, sheet.Errorf(sheet.ErrCapacityExceeded,
		"%d images do not fit in %dx%d; raise the maximum size or disable power-of-two/square",
		len(images), opts.MaxWidth, opts.MaxHeight)
}

// grow returns the next trial size. Square bins grow on both axes. Other
// bins double the axis with the longer missing dimension (dx against dy,
// width on ties) and fall back to the other axis once that one is at its
// maximum.
func grow(w, h, dx, dy int, opts Options) (int, int, bool) {
	next := func(v int) int {
		v *= 2
		if opts.PowerOfTwo {
			v = NextPowerOfTwo(v)
		}
		return v
	}

	if opts.Square {
		side := next(max(w, h))
		nw, nh := min(side, opts.MaxWidth), min(side, opts.MaxHeight)
		return nw, nh, nw != w || nh != h
	}

	canW, canH := w < opts.MaxWidth, h < opts.MaxHeight
	switch {
	case canW && (dx >= dy || !canH):
		return min(next(w), opts.MaxWidth), h, true
	case canH:
		return w, min(next(h), opts.MaxHeight), true
	}
	return w, h, false
}

type rect struct {
	x, y, w, h int
}

func (r rect) right() int  { return r.x + r.w }
func (r rect) bottom() int { return r.y + r.h }

func (r rect) intersects(o rect) bool {
	return r.x < o.right() && r.right() > o.x && r.y < o.bottom() && r.bottom() > o.y
}

func (r rect) contains(o rect) bool {
	return o.x >= r.x && o.y >= r.y && o.right() <= r.right() && o.bottom() <= r.bottom()
}

// bin tracks the free space of one trial canvas. Each placed image reserves
// its size plus padding; the free area is widened by one padding so the last
// row and column need no trailing gap.
type bin struct {
	padding int
	logic   Logic
	rotate  bool
	free    []rect
}

func newBin(w, h int, opts Options) *bin {
	b := &bin{
		padding: opts.Padding,
		logic:   opts.Logic,
		rotate:  opts.AllowRotation,
	}
	fw := w + opts.Padding - 2*opts.Border
	fh := h + opts.Padding - 2*opts.Border
	if fw > 0 && fh > 0 {
		b.free = []rect{{x: opts.Border, y: opts.Border, w: fw, h: fh}}
	}
	return b
}

// insertAll places images in order and returns the first one that does not
// fit, or nil when all of them do.
func (b *bin) insertAll(images []*sheet.Image) ([]sheet.Placement, *sheet.Image) {
	placements := make([]sheet.Placement, 0, len(images))
	for _, img := range images {
		p, ok := b.insert(img)
		if !ok {
			return nil, img
		}
		placements = append(placements, p)
	}
	return placements, nil
}

// shortfall returns how much wider and taller the closest free rectangle
// would have to be to hold img, trying both orientations when rotation is
// allowed. With no free space left the whole image is missing.
func (b *bin) shortfall(img *sheet.Image) (int, int) {
	w, h := img.Width+b.padding, img.Height+b.padding
	bestDX, bestDY := w, h

	try := func(free rect, cw, ch int) {
		dx, dy := max(0, cw-free.w), max(0, ch-free.h)
		if dx+dy < bestDX+bestDY {
			bestDX, bestDY = dx, dy
		}
	}
	for _, free := range b.free {
		try(free, w, h)
		if b.rotate && w != h {
			try(free, h, w)
		}
	}
	return bestDX, bestDY
}

func (b *bin) insert(img *sheet.Image) (sheet.Placement, bool) {
	node, rotated, ok := b.findNode(img.Width+b.padding, img.Height+b.padding)
	if !ok {
		return sheet.Placement{}, false
	}
	b.splitFree(node)
	b.prune()

	return sheet.Placement{
		Image:   img,
		X:       node.x,
		Y:       node.y,
		Width:   node.w - b.padding,
		Height:  node.h - b.padding,
		Rotated: rotated,
	}, true
}

// score ranks a candidate; lower is better on (primary, secondary).
func (b *bin) score(free rect, w, h int) (int, int) {
	leftW, leftH := free.w-w, free.h-h
	if b.logic == LogicMaxEdge {
		return min(leftW, leftH), max(leftW, leftH)
	}
	return free.w*free.h - w*h, min(leftW, leftH)
}

func (b *bin) findNode(w, h int) (rect, bool, bool) {
	var (
		best        rect
		bestRotated bool
		found       bool
		bestPrimary = math.MaxInt
		bestSecond  = math.MaxInt
	)

	consider := func(free rect, cw, ch int, rotated bool) {
		if free.w < cw || free.h < ch {
			return
		}
		primary, second := b.score(free, cw, ch)
		if primary < bestPrimary || (primary == bestPrimary && second < bestSecond) {
			best = rect{x: free.x, y: free.y, w: cw, h: ch}
			bestRotated = rotated
			bestPrimary, bestSecond = primary, second
			found = true
		}
	}

	for _, free := range b.free {
		consider(free, w, h, false)
		if b.rotate && w != h {
			consider(free, h, w, true)
		}
	}
	return best, bestRotated, found
}

// splitFree replaces every free rectangle overlapping node with the maximal
// rectangles left around it.
func (b *bin) splitFree(node rect) {
	next := make([]rect, 0, len(b.free)+4)
	for _, f := range b.free {
		if !f.intersects(node) {
			next = append(next, f)
			continue
		}
		if node.x > f.x {
			next = append(next, rect{x: f.x, y: f.y, w: node.x - f.x, h: f.h})
		}
		if node.right() < f.right() {
			next = append(next, rect{x: node.right(), y: f.y, w: f.right() - node.right(), h: f.h})
		}
		if node.y > f.y {
			next = append(next, rect{x: f.x, y: f.y, w: f.w, h: node.y - f.y})
		}
		if node.bottom() < f.bottom() {
			next = append(next, rect{x: f.x, y: node.bottom(), w: f.w, h: f.bottom() - node.bottom()})
		}
	}
	b.free = next
}

// prune drops free rectangles contained in another one.
func (b *bin) prune() {
	kept := make([]rect, 0, len(b.free))
	for i, r := range b.free {
		redundant := false
		for j, o := range b.free {
			if i == j || !o.contains(r) {
				continue
			}
			// identical rectangles: keep the first occurrence only
			if r == o && i < j {
				continue
			}
			redundant = true
			break
		}
		if !redundant {
			kept = append(kept, r)
		}
	}
	b.free = kept
}
