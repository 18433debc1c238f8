// Package codec reads and writes sprite sheet manifests.
//
// Two formats are provided, JSON and the Apple/cocos2d property list, both
// mapping to the same sheet.Config. A Registry picks a codec by file
// extension or, failing that, by trying each codec on the content.
package codec

import "github.com/kiesman99/spritepack/pkg/sheet"

// Codec converts between a manifest document and a sheet.Config.
type Codec interface {
	// Name is a short display name such as "JSON".
	Name() string
	// Extensions lists the lower-case file extensions without the dot.
	Extensions() []string
	// MimeType is the media type of exported documents.
	MimeType() string
	// Parse decodes a manifest. Malformed input yields an INVALID_CONFIG error.
	Parse(content []byte) (*sheet.Config, error)
	// Export encodes cfg.
	Export(cfg *sheet.Config) ([]byte, error)
}
