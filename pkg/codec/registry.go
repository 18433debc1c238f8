package codec

import (
	"path"
	"strings"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// Registry maps file extensions to codecs. Registration order decides which
// codec content detection tries first.
type Registry struct {
	codecs []Codec
	byExt  map[string]Codec
}

// NewRegistry returns a registry holding codecs in the given order.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{byExt: make(map[string]Codec)}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Default returns a registry with the JSON and PLIST codecs.
func Default() *Registry {
	return NewRegistry(JSON{}, Plist{})
}

// Register adds c. Extensions already claimed by another codec move to c.
func (r *Registry) Register(c Codec) {
	r.codecs = append(r.codecs, c)
	for _, ext := range c.Extensions() {
		r.byExt[normalizeExt(ext)] = c
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ByExtension finds the codec for ext, with or without the leading dot.
func (r *Registry) ByExtension(ext string) (Codec, bool) {
	c, ok := r.byExt[normalizeExt(ext)]
	return c, ok
}

// ByFilename finds the codec for the extension of name.
func (r *Registry) ByFilename(name string) (Codec, bool) {
	ext := path.Ext(strings.ReplaceAll(name, `\`, "/"))
	if ext == "" {
		return nil, false
	}
	return r.ByExtension(ext)
}

// Detect picks a codec by the extension of filename, falling back to the
// first codec that parses content without error.
func (r *Registry) Detect(content []byte, filename string) (Codec, error) {
	if c, ok := r.ByFilename(filename); ok {
		return c, nil
	}
	c, _, err := r.scan(content, filename)
	return c, err
}

func (r *Registry) scan(content []byte, filename string) (Codec, *sheet.Config, error) {
	for _, c := range r.codecs {
		if cfg, err := c.Parse(content); err == nil {
			return c, cfg, nil
		}
	}
	return nil, nil, sheet.Errorf(sheet.ErrUnsupportedFormat, "no codec understands %q", filename)
}

// Parse decodes content with the codec for filename. When the extension is
// unknown every codec is tried in registration order.
func (r *Registry) Parse(content []byte, filename string) (*sheet.Config, Codec, error) {
	if c, ok := r.ByFilename(filename); ok {
		cfg, err := c.Parse(content)
		if err != nil {
			return nil, c, err
		}
		return cfg, c, nil
	}
	c, cfg, err := r.scan(content, filename)
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}

// Export encodes cfg with the codec for filename, defaulting to JSON.
func (r *Registry) Export(cfg *sheet.Config, filename string) ([]byte, Codec, error) {
	c, ok := r.ByFilename(filename)
	if !ok {
		c, ok = r.ByExtension("json")
	}
	if !ok {
		if len(r.codecs) == 0 {
			return nil, nil, sheet.Errorf(sheet.ErrUnsupportedFormat, "no codecs registered")
		}
		c = r.codecs[0]
	}
	data, err := c.Export(cfg)
	if err != nil {
		return nil, c, err
	}
	return data, c, nil
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []Codec {
	return append([]Codec(nil), r.codecs...)
}

// Extensions returns every registered extension in registration order.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, c := range r.codecs {
		for _, ext := range c.Extensions() {
			exts = append(exts, normalizeExt(ext))
		}
	}
	return exts
}
