// Package atlas runs the pack and unpack pipelines over in-memory files so
// the CLI and the HTTP server share one implementation.
package atlas

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/kiesman99/spritepack/internal/logging"
	"github.com/kiesman99/spritepack/pkg/codec"
	"github.com/kiesman99/spritepack/pkg/pack"
	"github.com/kiesman99/spritepack/pkg/raster"
	"github.com/kiesman99/spritepack/pkg/sheet"
)

// File is a named blob, either an input image or a produced artifact.
type File struct {
	Name string
	Data []byte
}

// Options contains all pack parameters.
type Options struct {
	Pack pack.Options

	// Trim crops transparent borders before packing.
	Trim bool

	// ImageName is the sheet file name recorded in the manifest.
	ImageName string
	// PixelFormat is recorded in the manifest.
	PixelFormat string
	// ManifestFormat is a codec extension such as "json" or "plist".
	ManifestFormat string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Pack:           pack.DefaultOptions(),
		ImageName:      sheet.DefaultImageName,
		PixelFormat:    sheet.DefaultPixelFormat,
		ManifestFormat: "json",
	}
}

// Result contains the packed sheet and its manifest.
type Result struct {
	Image    File
	Manifest File
	Config   *sheet.Config
	Codec    codec.Codec
}

// Files returns the sheet image and manifest, in that order.
func (r *Result) Files() []File {
	return []File{r.Image, r.Manifest}
}

// Packer performs pack and unpack operations.
type Packer struct {
	registry *codec.Registry
}

// New creates a packer. A nil registry selects codec.Default().
func New(registry *codec.Registry) *Packer {
	if registry == nil {
		registry = codec.Default()
	}
	return &Packer{registry: registry}
}

// Registry returns the manifest codecs used by the packer.
func (p *Packer) Registry() *codec.Registry {
	return p.registry
}

// ManifestName derives the manifest file name from the sheet image name,
// e.g. "sprite.png" and "plist" give "sprite.plist".
func ManifestName(imageName, format string) string {
	if imageName == "" {
		imageName = sheet.DefaultImageName
	}
	base := strings.TrimSuffix(imageName, path.Ext(imageName))
	return base + "." + strings.TrimPrefix(strings.ToLower(format), ".")
}

// Pack decodes inputs, lays them out, draws the sheet and encodes the
// manifest. Inputs without a name get a random id.
func (p *Packer) Pack(ctx context.Context, inputs []File, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)
	prog := logging.NewProgress(logger)

	if len(inputs) == 0 {
		return nil, sheet.Errorf(sheet.ErrEmptyInput, "no images to pack")
	}
	if opts.ManifestFormat == "" {
		opts.ManifestFormat = "json"
	}
	if opts.ImageName == "" {
		opts.ImageName = sheet.DefaultImageName
	}
	manifestName := ManifestName(opts.ImageName, opts.ManifestFormat)
	if _, ok := p.registry.ByFilename(manifestName); !ok {
		return nil, sheet.Errorf(sheet.ErrUnsupportedFormat, "unknown manifest format %q", opts.ManifestFormat)
	}

	images := make([]*sheet.Image, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := in.Name
		if name == "" {
			name = uuid.NewString() + ".png"
		}
		// names key the manifest frames and the unpacked file names
		if seen[name] {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig, "duplicate sprite name %q", name)
		}
		seen[name] = true
		img, err := raster.Load(name, name, in.Data)
		if err != nil {
			return nil, err
		}
		if opts.Trim {
			if img, err = raster.Trim(img); err != nil {
				return nil, err
			}
		}
		logger.Debug("Loaded image", "name", name, "width", img.Width, "height", img.Height)
		images = append(images, img)
	}

	layout, err := pack.Pack(images, opts.Pack)
	if err != nil {
		return nil, err
	}
	logger.Debug("Laid out sheet", "width", layout.Width, "height", layout.Height, "algorithm", opts.Pack.Algorithm)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	surface, err := raster.Composite(layout)
	if err != nil {
		return nil, err
	}
	imageData, err := raster.EncodePNG(surface)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sheet: %w", err)
	}

	cfg := sheet.NewConfig(layout, opts.ImageName, opts.PixelFormat)
	manifest, c, err := p.registry.Export(cfg, manifestName)
	if err != nil {
		return nil, err
	}

	prog.Done(fmt.Sprintf("Packed %d sprites into %dx%d", len(images), layout.Width, layout.Height))

	return &Result{
		Image:    File{Name: opts.ImageName, Data: imageData},
		Manifest: File{Name: manifestName, Data: manifest},
		Config:   cfg,
		Codec:    c,
	}, nil
}

// ParseManifest decodes a manifest, picking the codec by the extension of
// name or by content.
func (p *Packer) ParseManifest(manifest []byte, name string) (*sheet.Config, codec.Codec, error) {
	return p.registry.Parse(manifest, name)
}

// Extract cuts every frame of cfg out of the encoded sheet image and
// returns them as PNG files named after the frames.
func (p *Packer) Extract(ctx context.Context, sheetImage []byte, cfg *sheet.Config) ([]File, error) {
	logger := logging.FromContext(ctx)
	prog := logging.NewProgress(logger)

	img, _, err := raster.Decode(sheetImage)
	if err != nil {
		return nil, sheet.Wrap(sheet.ErrMissingImageData, err, "sheet image %q", cfg.Image)
	}

	sprites, err := raster.Unpack(ctx, img, cfg)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(sprites))
	names := make(map[string]string, len(sprites))
	for _, s := range sprites {
		name := FrameFileName(s.Frame.Name)
		if prev, dup := names[name]; dup {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig,
				"frames %q and %q both unpack to %s", prev, s.Frame.Name, name)
		}
		names[name] = s.Frame.Name

		data, err := raster.EncodePNG(s.Image)
		if err != nil {
			return nil, sheet.Wrap(sheet.ErrExtractionFailed, err, "frame %q", s.Frame.Name)
		}
		logger.Debug("Extracted frame", "name", s.Frame.Name, "rotated", s.Frame.Rotated, "trimmed", s.Frame.Trimmed)
		files = append(files, File{Name: name, Data: data})
	}

	prog.Done(fmt.Sprintf("Extracted %d frames", len(files)))
	return files, nil
}

// Unpack parses manifest and extracts its frames from sheetImage.
func (p *Packer) Unpack(ctx context.Context, sheetImage, manifest []byte, manifestName string) ([]File, error) {
	cfg, _, err := p.ParseManifest(manifest, manifestName)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, sheetImage, cfg)
}

// FrameFileName turns a frame name into a safe relative PNG path. Leading
// slashes and ".." elements are dropped.
func FrameFileName(name string) string {
	clean := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, `\`, "/")), "/")
	if clean == "" {
		clean = "frame"
	}
	if !strings.EqualFold(path.Ext(clean), ".png") {
		clean += ".png"
	}
	return clean
}
