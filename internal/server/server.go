package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kiesman99/spritepack/internal/api"
	"github.com/kiesman99/spritepack/internal/atlas"
	"github.com/kiesman99/spritepack/pkg/pack"
	"github.com/kiesman99/spritepack/pkg/sheet"
)

// DefaultMaxUpload limits the size of multipart uploads.
const DefaultMaxUpload = 64 << 20

// Server implements api.ServerInterface
type Server struct {
	startTime time.Time
	version   string
	packer    *atlas.Packer
	logger    *log.Logger
	maxUpload int64
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for handler errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxUpload sets the multipart upload limit in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithPacker replaces the default packer.
func WithPacker(p *atlas.Packer) Option {
	return func(s *Server) { s.packer = p }
}

// NewServer creates a new server instance
func NewServer(version string, opts ...Option) *Server {
	s := &Server{
		startTime: time.Now(),
		version:   version,
		packer:    atlas.New(nil),
		logger:    log.Default(),
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Error encoding health response", "err", err)
	}
}

// PackSprites packs the uploaded "images" files and responds with a zip
// holding the sheet image and its manifest.
func (s *Server) PackSprites(w http.ResponseWriter, r *http.Request, params api.PackSpritesParams) {
	requestID := generateRequestID()

	opts, err := packOptions(params)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDPARAMETER, err.Error(), &requestID, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDUPLOAD,
			"Expected a multipart form with image files", &requestID, nil)
		return
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["images"]
	}

	inputs := make([]atlas.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDUPLOAD, err.Error(), &requestID, nil)
			return
		}
		inputs = append(inputs, atlas.File{Name: fh.Filename, Data: data})
	}

	result, err := s.packer.Pack(r.Context(), inputs, opts)
	if err != nil {
		s.handleError(w, err, &requestID)
		return
	}

	s.writeZip(w, result.Files(), "spritesheet.zip", requestID)
}

// UnpackSprites extracts the frames of the uploaded "atlas" image using the
// uploaded "manifest" and responds with a zip of frame PNGs.
func (s *Server) UnpackSprites(w http.ResponseWriter, r *http.Request, params api.UnpackSpritesParams) {
	requestID := generateRequestID()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDUPLOAD,
			"Expected a multipart form with atlas and manifest files", &requestID, nil)
		return
	}

	sheetImage, _, err := formFile(r, "atlas")
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDUPLOAD, err.Error(), &requestID, nil)
		return
	}
	manifest, manifestName, err := formFile(r, "manifest")
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDUPLOAD, err.Error(), &requestID, nil)
		return
	}
	if params.ManifestName != nil {
		manifestName = *params.ManifestName
	}

	frames, err := s.packer.Unpack(r.Context(), sheetImage, manifest, manifestName)
	if err != nil {
		s.handleError(w, err, &requestID)
		return
	}

	s.writeZip(w, frames, "frames.zip", requestID)
}

func (s *Server) writeZip(w http.ResponseWriter, files []atlas.File, name, requestID string) {
	data, err := atlas.Zip(files)
	if err != nil {
		s.handleError(w, err, &requestID)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Error writing response", "err", err, "request_id", requestID)
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %q file", field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read %q: %w", field, err)
	}
	return data, fh.Filename, nil
}

// packOptions converts query parameters into atlas options
func packOptions(params api.PackSpritesParams) (atlas.Options, error) {
	opts := atlas.DefaultOptions()

	if params.Algorithm != nil {
		algo, err := pack.ParseAlgorithm(string(*params.Algorithm))
		if err != nil {
			return opts, err
		}
		opts.Pack.Algorithm = algo
	}
	if params.Logic != nil {
		logic, err := pack.ParseLogic(string(*params.Logic))
		if err != nil {
			return opts, err
		}
		opts.Pack.Logic = logic
	}

	for _, v := range []struct {
		name string
		val  *int
		dst  *int
	}{
		{"padding", params.Padding, &opts.Pack.Padding},
		{"border", params.Border, &opts.Pack.Border},
		{"max_width", params.MaxWidth, &opts.Pack.MaxWidth},
		{"max_height", params.MaxHeight, &opts.Pack.MaxHeight},
	} {
		if v.val == nil {
			continue
		}
		if *v.val < 0 {
			return opts, fmt.Errorf("%s must not be negative", v.name)
		}
		*v.dst = *v.val
	}

	if params.Pot != nil {
		opts.Pack.PowerOfTwo = *params.Pot
	}
	if params.Square != nil {
		opts.Pack.Square = *params.Square
	}
	if params.Rotate != nil {
		opts.Pack.AllowRotation = *params.Rotate
	}
	if params.Trim != nil {
		opts.Trim = *params.Trim
	}
	if params.Format != nil {
		opts.ManifestFormat = string(*params.Format)
	}
	if params.ImageName != nil && *params.ImageName != "" {
		opts.ImageName = *params.ImageName
	}
	if params.PixelFormat != nil && *params.PixelFormat != "" {
		opts.PixelFormat = *params.PixelFormat
	}

	return opts, nil
}

// statusForKind maps sheet error kinds to HTTP status codes
func statusForKind(kind sheet.Kind) int {
	switch kind {
	case sheet.ErrEmptyInput, sheet.ErrInvalidConfig, sheet.ErrUnsupportedFormat, sheet.ErrMissingImageData:
		return http.StatusBadRequest
	case sheet.ErrCapacityExceeded:
		return http.StatusUnprocessableEntity
	case sheet.ErrExtractionFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// handleError handles errors from the pack and unpack pipelines
func (s *Server) handleError(w http.ResponseWriter, err error, requestID *string) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "TIMEOUT",
			"Request timed out", requestID, nil)
		return
	}

	if kind := sheet.KindOf(err); kind != "" {
		status := statusForKind(kind)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Request failed", "err", err, "request_id", *requestID)
		}
		s.writeErrorResponse(w, status, string(kind), sheet.Message(err), requestID, nil)
		return
	}

	s.logger.Error("Internal error", "err", err, "request_id", *requestID)
	s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
		"Internal server error", requestID, nil)
}

// ParamErrorHandler reports query parameters that could not be bound.
func ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
		Error:   api.INVALIDPARAMETER,
		Message: err.Error(),
	})
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	if requestID != nil {
		w.Header().Set("X-Request-ID", *requestID)
	}
	if err := writeJSON(w, statusCode, response); err != nil {
		s.logger.Error("Error encoding error response", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return uuid.NewString()
}
