// Package workspace connects the CLI commands to the file system: it
// gathers input images, runs the atlas pipeline and persists the results
// through host.
package workspace

import (
	"context"
	"path/filepath"

	"github.com/kiesman99/spritepack/internal/atlas"
	"github.com/kiesman99/spritepack/internal/host"
	"github.com/kiesman99/spritepack/internal/logging"
	"github.com/kiesman99/spritepack/pkg/raster"
	"github.com/kiesman99/spritepack/pkg/sheet"
)

// PackOptions configures a pack run over files.
type PackOptions struct {
	Atlas  atlas.Options
	OutDir string
}

// UnpackOptions configures an unpack run over files.
type UnpackOptions struct {
	Manifest string
	// Image overrides the sheet image path. When empty the image named in
	// the manifest is looked up next to the manifest.
	Image  string
	OutDir string
	// Zip writes a single archive instead of one PNG per frame.
	Zip bool
}

// Workspace handles the file-level pack, unpack and convert logic.
type Workspace struct {
	host   *host.FS
	packer *atlas.Packer
}

// New creates a workspace instance.
func New(h *host.FS, packer *atlas.Packer) *Workspace {
	if packer == nil {
		packer = atlas.New(nil)
	}
	return &Workspace{host: h, packer: packer}
}

// CollectInputs expands paths into image files. Directories contribute
// their decodable images in name order; files are taken as given. Names are
// the base file names.
func (w *Workspace) CollectInputs(paths []string) ([]atlas.File, error) {
	var files []string
	for _, p := range paths {
		dir, err := w.host.IsDir(p)
		if err != nil {
			return nil, err
		}
		if !dir {
			files = append(files, p)
			continue
		}
		listed, err := w.host.List(p)
		if err != nil {
			return nil, err
		}
		for _, f := range listed {
			if raster.IsImageFile(f) {
				files = append(files, f)
			}
		}
	}

	inputs := make([]atlas.File, 0, len(files))
	seen := make(map[string]string)
	for _, f := range files {
		name := filepath.Base(f)
		if prev, dup := seen[name]; dup {
			return nil, sheet.Errorf(sheet.ErrInvalidConfig, "duplicate sprite name %q (%s and %s)", name, prev, f)
		}
		seen[name] = f

		data, err := w.host.Read(f)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, atlas.File{Name: name, Data: data})
	}

	if len(inputs) == 0 {
		return nil, sheet.Errorf(sheet.ErrEmptyInput, "no images found in %v", paths)
	}
	return inputs, nil
}

// Pack packs the images found at paths and writes the sheet image and
// manifest into opts.OutDir. It returns the written paths.
func (w *Workspace) Pack(ctx context.Context, paths []string, opts PackOptions) ([]string, error) {
	logger := logging.FromContext(ctx)

	inputs, err := w.CollectInputs(paths)
	if err != nil {
		return nil, err
	}
	logger.Infof("Packing %d images", len(inputs))

	res, err := w.packer.Pack(ctx, inputs, opts.Atlas)
	if err != nil {
		return nil, err
	}

	return w.writeAll(ctx, opts.OutDir, res.Files())
}

// Unpack extracts every frame of a manifest into opts.OutDir.
func (w *Workspace) Unpack(ctx context.Context, opts UnpackOptions) ([]string, error) {
	logger := logging.FromContext(ctx)

	manifest, err := w.host.Read(opts.Manifest)
	if err != nil {
		return nil, err
	}
	cfg, c, err := w.packer.ParseManifest(manifest, opts.Manifest)
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed manifest", "path", opts.Manifest, "codec", c.Name(), "frames", len(cfg.Frames))

	imagePath := opts.Image
	if imagePath == "" {
		imagePath = filepath.Join(filepath.Dir(opts.Manifest), cfg.Image)
	}
	sheetImage, err := w.host.Read(imagePath)
	if err != nil {
		return nil, sheet.Wrap(sheet.ErrMissingImageData, err, "sheet image")
	}

	frames, err := w.packer.Extract(ctx, sheetImage, cfg)
	if err != nil {
		return nil, err
	}

	if opts.Zip {
		archive, err := atlas.Zip(frames)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(opts.Manifest)
		name := base[:len(base)-len(filepath.Ext(base))] + ".zip"
		return w.writeAll(ctx, opts.OutDir, []atlas.File{{Name: name, Data: archive}})
	}
	return w.writeAll(ctx, opts.OutDir, frames)
}

// Convert re-encodes the manifest at in into the format implied by the
// extension of out.
func (w *Workspace) Convert(ctx context.Context, in, out string) error {
	data, err := w.host.Read(in)
	if err != nil {
		return err
	}
	registry := w.packer.Registry()
	cfg, from, err := registry.Parse(data, in)
	if err != nil {
		return err
	}
	converted, to, err := registry.Export(cfg, out)
	if err != nil {
		return err
	}
	if err := w.host.Write(ctx, out, converted); err != nil {
		return err
	}
	logging.FromContext(ctx).Infof("Converted %s (%s) to %s (%s)", in, from.Name(), out, to.Name())
	return nil
}

func (w *Workspace) writeAll(ctx context.Context, dir string, files []atlas.File) ([]string, error) {
	logger := logging.FromContext(ctx)
	written := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := w.host.Write(ctx, p, f.Data); err != nil {
			return written, err
		}
		logger.Debug("Wrote file", "path", p, "bytes", len(f.Data))
		written = append(written, p)
	}
	return written, nil
}
