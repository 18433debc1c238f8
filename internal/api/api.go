// Package api holds the HTTP contract of the spritepack service: request
// parameters, response bodies and the chi bindings for ServerInterface.
package api

import (
	"time"
)

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for PackSpritesParamsAlgorithm.
const (
	Maxrects PackSpritesParamsAlgorithm = "maxrects"
	Simple   PackSpritesParamsAlgorithm = "simple"
)

// Defines values for PackSpritesParamsLogic.
const (
	MaxArea PackSpritesParamsLogic = "max-area"
	MaxEdge PackSpritesParamsLogic = "max-edge"
)

// Defines values for PackSpritesParamsFormat.
const (
	Json  PackSpritesParamsFormat = "json"
	Plist PackSpritesParamsFormat = "plist"
)

// Error codes that are not sheet error kinds.
const (
	INVALIDPARAMETER = "INVALID_PARAMETER"
	INVALIDUPLOAD    = "INVALID_UPLOAD"
	INTERNALERROR    = "INTERNAL_ERROR"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	// Details Additional error details
	Details *map[string]interface{} `json:"details,omitempty"`

	// Error Machine-readable error code, e.g. CAPACITY_EXCEEDED
	Error string `json:"error"`

	// Message Human-readable error message
	Message string `json:"message"`

	// RequestId Request identifier for tracking
	RequestId *string `json:"request_id,omitempty"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`

	// Uptime Server uptime in seconds
	Uptime  *int    `json:"uptime,omitempty"`
	Version *string `json:"version,omitempty"`
}

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// PackSpritesParams defines parameters for PackSprites.
type PackSpritesParams struct {
	// Algorithm Layout algorithm
	Algorithm *PackSpritesParamsAlgorithm `form:"algorithm,omitempty" json:"algorithm,omitempty"`

	// Logic Free-rectangle scoring used by maxrects
	Logic *PackSpritesParamsLogic `form:"logic,omitempty" json:"logic,omitempty"`

	// Padding Gap between sprites in pixels
	Padding *int `form:"padding,omitempty" json:"padding,omitempty"`

	// Border Margin between sprites and the sheet edge (maxrects)
	Border *int `form:"border,omitempty" json:"border,omitempty"`

	MaxWidth  *int `form:"max_width,omitempty" json:"max_width,omitempty"`
	MaxHeight *int `form:"max_height,omitempty" json:"max_height,omitempty"`

	// Pot Round the sheet up to powers of two
	Pot    *bool `form:"pot,omitempty" json:"pot,omitempty"`
	Square *bool `form:"square,omitempty" json:"square,omitempty"`

	// Rotate Allow 90° rotation (maxrects)
	Rotate *bool `form:"rotate,omitempty" json:"rotate,omitempty"`

	// Trim Crop transparent borders before packing
	Trim *bool `form:"trim,omitempty" json:"trim,omitempty"`

	// Format Manifest format
	Format      *PackSpritesParamsFormat `form:"format,omitempty" json:"format,omitempty"`
	ImageName   *string                  `form:"image_name,omitempty" json:"image_name,omitempty"`
	PixelFormat *string                  `form:"pixel_format,omitempty" json:"pixel_format,omitempty"`
}

// PackSpritesParamsAlgorithm defines parameters for PackSprites.
type PackSpritesParamsAlgorithm string

// PackSpritesParamsLogic defines parameters for PackSprites.
type PackSpritesParamsLogic string

// PackSpritesParamsFormat defines parameters for PackSprites.
type PackSpritesParamsFormat string

// UnpackSpritesParams defines parameters for UnpackSprites.
type UnpackSpritesParams struct {
	// ManifestName File name used to pick the manifest codec; defaults to
	// the uploaded file name, then content detection.
	ManifestName *string `form:"manifest_name,omitempty" json:"manifest_name,omitempty"`
}
