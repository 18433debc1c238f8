package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
`

// plistFormat is the metadata format number of cocos2d texture atlases.
const plistFormat = 2

// Plist is the Apple/cocos2d texture atlas property list codec. Frame rects
// store the un-rotated sprite size, matching sheet.Frame.
type Plist struct{}

func (Plist) Name() string         { return "PLIST" }
func (Plist) Extensions() []string { return []string{"plist"} }
func (Plist) MimeType() string     { return "application/xml" }

// Parse decodes a property list manifest. The root dict must hold a "frames"
// dict keyed by sprite name and a "metadata" dict.
func (Plist) Parse(content []byte) (*sheet.Config, error) {
	root, err := ParsePlist(content)
	if err != nil {
		return nil, err
	}

	framesValue, ok := root.Get("frames")
	if !ok || framesValue.Kind != KindDict {
		return nil, sheet.Errorf(sheet.ErrInvalidConfig, "plist manifest has no frames dict")
	}
	metaValue, ok := root.Get("metadata")
	if !ok || metaValue.Kind != KindDict {
		return nil, sheet.Errorf(sheet.ErrInvalidConfig, "plist manifest has no metadata dict")
	}
	metadata := metaValue.Dict

	var size sheet.Size
	if s, ok := stringField(metadata, "size"); ok {
		if size, err = ParseSize(s); err != nil {
			return nil, sheet.Wrap(sheet.ErrInvalidConfig, err, "metadata size")
		}
	}
	image := sheet.DefaultImageName
	if s, ok := stringField(metadata, "textureFileName"); ok && s != "" {
		image = s
	}
	pixelFormat := sheet.DefaultPixelFormat
	if s, ok := stringField(metadata, "pixelFormat"); ok && s != "" {
		pixelFormat = s
	}

	frames := framesValue.Dict
	cfg := &sheet.Config{
		Image:  image,
		Format: pixelFormat,
		Size:   size,
		Scale:  1,
		Frames: make([]sheet.Frame, 0, frames.Len()),
		Meta: &sheet.Meta{
			App:     sheet.AppName,
			Version: sheet.AppVersion,
			Format:  pixelFormat,
			Size:    size,
		},
	}

	for _, name := range frames.Keys() {
		v, _ := frames.Get(name)
		if v.Kind != KindDict {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig, "frame %q is not a dict", name)
		}
		frame, err := decodeFrame(name, v.Dict)
		if err != nil {
			return nil, err
		}
		cfg.Frames = append(cfg.Frames, frame)
	}

	return cfg, nil
}

func stringField(d *Dict, key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	return v.Text()
}

func decodeFrame(name string, d *Dict) (sheet.Frame, error) {
	s, ok := stringField(d, "frame")
	if !ok {
		return sheet.Frame{}, sheet.Errorf(sheet.ErrInvalidConfig, "frame %q has no frame rect", name)
	}
	rect, err := ParseRect(s)
	if err != nil {
		return sheet.Frame{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "frame %q", name)
	}

	rotated := false
	if v, ok := d.Get("rotated"); ok {
		rotated = v.Truthy()
	}

	source := sheet.Size{W: rect.W, H: rect.H}
	if s, ok := stringField(d, "sourceSize"); ok {
		if source, err = ParseSize(s); err != nil {
			return sheet.Frame{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "frame %q sourceSize", name)
		}
	}

	// Without a sourceColorRect the frame is untrimmed and sits at the canvas
	// origin. The atlas position in rect says nothing about the canvas.
	colorRect := sheet.Rect{W: rect.W, H: rect.H}
	if s, ok := stringField(d, "sourceColorRect"); ok {
		if colorRect, err = ParseRect(s); err != nil {
			return sheet.Frame{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "frame %q sourceColorRect", name)
		}
	}

	// offset duplicates sourceColorRect, which is exact; it is only validated.
	if s, ok := stringField(d, "offset"); ok {
		if _, err := ParsePoint(s); err != nil {
			return sheet.Frame{}, sheet.Wrap(sheet.ErrInvalidConfig, err, "frame %q offset", name)
		}
	}

	return sheet.Frame{
		ID:               name,
		Name:             name,
		X:                rect.X,
		Y:                rect.Y,
		Width:            rect.W,
		Height:           rect.H,
		Rotated:          rotated,
		Trimmed:          sheet.IsTrimmed(colorRect, source),
		SourceSize:       &source,
		SpriteSourceSize: &colorRect,
	}, nil
}

// Export writes cfg as a format 2 texture atlas: the frames dict first, then
// metadata. Offsets follow the cocos2d convention of the visible region's
// centre relative to the canvas centre, y pointing up.
func (Plist) Export(cfg *sheet.Config) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(plistHeader)
	b.WriteString("\t<key>frames</key>\n\t<dict>\n")

	seen := make(map[string]bool, len(cfg.Frames))
	for i := range cfg.Frames {
		f := &cfg.Frames[i]
		// frames are keyed by name, so a repeated name would lose a frame
		if seen[f.Name] {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig, "duplicate frame name %q", f.Name)
		}
		seen[f.Name] = true

		source := f.CanvasSize()
		colorRect := sheet.Rect{W: f.Width, H: f.Height}
		if f.SpriteSourceSize != nil {
			colorRect = *f.SpriteSourceSize
		}
		offX := float64(colorRect.X) + float64(colorRect.W)/2 - float64(source.W)/2
		offY := float64(source.H)/2 - (float64(colorRect.Y) + float64(colorRect.H)/2)

		rotated := "<false/>"
		if f.Rotated {
			rotated = "<true/>"
		}

		fmt.Fprintf(&b, "\t\t<key>%s</key>\n\t\t<dict>\n", escape(f.Name))
		fmt.Fprintf(&b, "\t\t\t<key>frame</key>\n\t\t\t<string>%s</string>\n",
			FormatRect(sheet.Rect{X: f.X, Y: f.Y, W: f.Width, H: f.Height}))
		fmt.Fprintf(&b, "\t\t\t<key>offset</key>\n\t\t\t<string>%s</string>\n", formatOffset(offX, offY))
		fmt.Fprintf(&b, "\t\t\t<key>rotated</key>\n\t\t\t%s\n", rotated)
		fmt.Fprintf(&b, "\t\t\t<key>sourceColorRect</key>\n\t\t\t<string>%s</string>\n", FormatRect(colorRect))
		fmt.Fprintf(&b, "\t\t\t<key>sourceSize</key>\n\t\t\t<string>%s</string>\n", FormatSize(source))
		b.WriteString("\t\t</dict>\n")
	}

	pixelFormat := cfg.Format
	if pixelFormat == "" {
		pixelFormat = sheet.DefaultPixelFormat
	}

	b.WriteString("\t</dict>\n\t<key>metadata</key>\n\t<dict>\n")
	fmt.Fprintf(&b, "\t\t<key>format</key>\n\t\t<integer>%d</integer>\n", plistFormat)
	fmt.Fprintf(&b, "\t\t<key>pixelFormat</key>\n\t\t<string>%s</string>\n", escape(pixelFormat))
	fmt.Fprintf(&b, "\t\t<key>size</key>\n\t\t<string>%s</string>\n", FormatSize(cfg.Size))
	fmt.Fprintf(&b, "\t\t<key>textureFileName</key>\n\t\t<string>%s</string>\n", escape(cfg.Image))
	b.WriteString("\t</dict>\n</dict>\n</plist>\n")

	return b.Bytes(), nil
}

func escape(s string) string {
	var b bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
