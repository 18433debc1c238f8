// Package sheet holds the value types shared by the packer, the raster
// compositor/extractor and the manifest codecs.
package sheet

import "image"

// Default manifest values written by NewConfig.
const (
	DefaultImageName   = "sprite.png"
	DefaultPixelFormat = "RGBA8888"
	AppName            = "SpritePack"
	AppVersion         = "1.0.0"
)

// Point is an integer pixel offset
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is an integer pixel extent
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Rect is an offset plus extent
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Image describes one input bitmap. Width and Height are the dimensions of
// Pixels; Source and Trim record how the bitmap was cut out of its original
// canvas (both zero when the image was not trimmed).
type Image struct {
	ID     string
	Name   string
	Width  int
	Height int
	Pixels image.Image

	// Source is the original canvas size before trimming.
	Source Size
	// Trim is the visible region inside the original canvas.
	Trim Rect
}

// Area returns the pixel area of the image.
func (img *Image) Area() int {
	return img.Width * img.Height
}

// SourceSize returns the pre-trim canvas size, falling back to the image size.
func (img *Image) SourceSize() Size {
	if img.Source.W > 0 && img.Source.H > 0 {
		return img.Source
	}
	return Size{W: img.Width, H: img.Height}
}

// SpriteSourceSize returns the visible region inside the original canvas.
func (img *Image) SpriteSourceSize() Rect {
	if img.Trim.W > 0 && img.Trim.H > 0 {
		return img.Trim
	}
	return Rect{W: img.Width, H: img.Height}
}

// Placement is where one image landed in a layout. Width and Height are the
// footprint on the sheet, so they are swapped relative to the image when
// Rotated is set.
type Placement struct {
	Image   *Image
	X       int
	Y       int
	Width   int
	Height  int
	Rotated bool
}

// Bounds returns the footprint as an image.Rectangle.
func (p Placement) Bounds() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Layout is the result of a packing run.
type Layout struct {
	Width      int
	Height     int
	Placements []Placement
}

// Frame is the persisted record of one sprite. Width and Height are the
// un-rotated sprite size; the footprint on the sheet is swapped when Rotated
// is set.
type Frame struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	X                int    `json:"x"`
	Y                int    `json:"y"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Rotated          bool   `json:"rotated"`
	Trimmed          bool   `json:"trimmed"`
	SourceSize       *Size  `json:"sourceSize,omitempty"`
	SpriteSourceSize *Rect  `json:"spriteSourceSize,omitempty"`
}

// Footprint returns the rectangle the frame occupies on the sheet.
func (f *Frame) Footprint() Rect {
	if f.Rotated {
		return Rect{X: f.X, Y: f.Y, W: f.Height, H: f.Width}
	}
	return Rect{X: f.X, Y: f.Y, W: f.Width, H: f.Height}
}

// CanvasSize returns the size of the untrimmed sprite.
func (f *Frame) CanvasSize() Size {
	if f.SourceSize != nil {
		return *f.SourceSize
	}
	return Size{W: f.Width, H: f.Height}
}

// Offset returns where the visible region sits inside the untrimmed canvas.
func (f *Frame) Offset() Point {
	if f.SpriteSourceSize != nil {
		return Point{X: f.SpriteSourceSize.X, Y: f.SpriteSourceSize.Y}
	}
	return Point{}
}

// IsTrimmed reports whether colorRect does not cover the whole source canvas.
func IsTrimmed(colorRect Rect, source Size) bool {
	return colorRect.X != 0 || colorRect.Y != 0 || colorRect.W != source.W || colorRect.H != source.H
}

// Meta is the informational block of a manifest.
type Meta struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Format  string `json:"format"`
	Size    Size   `json:"size"`
}

// Config is a sprite sheet manifest. Frame order carries no meaning; use
// Lookup to find a frame by id or name.
type Config struct {
	Image  string  `json:"image"`
	Format string  `json:"format"`
	Size   Size    `json:"size"`
	Scale  float64 `json:"scale"`
	Frames []Frame `json:"frames"`
	Meta   *Meta   `json:"meta,omitempty"`
}

// Lookup finds a frame by id, then by name.
func (c *Config) Lookup(key string) (*Frame, bool) {
	for i := range c.Frames {
		if c.Frames[i].ID == key {
			return &c.Frames[i], true
		}
	}
	for i := range c.Frames {
		if c.Frames[i].Name == key {
			return &c.Frames[i], true
		}
	}
	return nil, false
}

// NewConfig builds the manifest for a packed layout. imageName and
// pixelFormat fall back to DefaultImageName and DefaultPixelFormat.
func NewConfig(layout *Layout, imageName, pixelFormat string) *Config {
	if imageName == "" {
		imageName = DefaultImageName
	}
	if pixelFormat == "" {
		pixelFormat = DefaultPixelFormat
	}

	size := Size{W: layout.Width, H: layout.Height}
	frames := make([]Frame, 0, len(layout.Placements))
	for _, p := range layout.Placements {
		img := p.Image
		src := img.SourceSize()
		colorRect := img.SpriteSourceSize()
		frames = append(frames, Frame{
			ID:               img.ID,
			Name:             img.Name,
			X:                p.X,
			Y:                p.Y,
			Width:            img.Width,
			Height:           img.Height,
			Rotated:          p.Rotated,
			Trimmed:          IsTrimmed(colorRect, src),
			SourceSize:       &src,
			SpriteSourceSize: &colorRect,
		})
	}

	return &Config{
		Image:  imageName,
		Format: pixelFormat,
		Size:   size,
		Scale:  1,
		Frames: frames,
		Meta: &Meta{
			App:     AppName,
			Version: AppVersion,
			Format:  pixelFormat,
			Size:    size,
		},
	}
}
