package codec

import (
	"bytes"
	"encoding/json"

	"github.com/kiesman99/spritepack/pkg/sheet"
)

// JSON is the field-for-field JSON manifest codec.
type JSON struct{}

func (JSON) Name() string         { return "JSON" }
func (JSON) Extensions() []string { return []string{"json"} }
func (JSON) MimeType() string     { return "application/json" }

// Parse decodes a JSON manifest. The top-level "frames" key must hold an
// array.
func (JSON) Parse(content []byte) (*sheet.Config, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(content, &probe); err != nil {
		return nil, sheet.Wrap(sheet.ErrInvalidConfig, err, "parse json manifest")
	}
	frames, ok := probe["frames"]
	if !ok {
		return nil, sheet.Errorf(sheet.ErrInvalidConfig, "json manifest has no frames")
	}
	if trimmed := bytes.TrimSpace(frames); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, sheet.Errorf(sheet.ErrInvalidConfig, "json manifest frames is not an array")
	}

	var cfg sheet.Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, sheet.Wrap(sheet.ErrInvalidConfig, err, "parse json manifest")
	}
	return &cfg, nil
}

// Export encodes cfg with two-space indentation.
func (JSON) Export(cfg *sheet.Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
