package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Health check
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Pack uploaded images into a sheet
	// (POST /pack)
	PackSprites(w http.ResponseWriter, r *http.Request, params PackSpritesParams)
	// Extract frames from an uploaded sheet
	// (POST /unpack)
	UnpackSprites(w http.ResponseWriter, r *http.Request, params UnpackSpritesParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	handler := http.Handler(h)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetHealth)
}

// PackSprites operation middleware
func (siw *ServerInterfaceWrapper) PackSprites(w http.ResponseWriter, r *http.Request) {
	var params PackSpritesParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest interface{}
	}{
		{"algorithm", &params.Algorithm},
		{"logic", &params.Logic},
		{"padding", &params.Padding},
		{"border", &params.Border},
		{"max_width", &params.MaxWidth},
		{"max_height", &params.MaxHeight},
		{"pot", &params.Pot},
		{"square", &params.Square},
		{"rotate", &params.Rotate},
		{"trim", &params.Trim},
		{"format", &params.Format},
		{"image_name", &params.ImageName},
		{"pixel_format", &params.PixelFormat},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PackSprites(w, r, params)
	})
}

// UnpackSprites operation middleware
func (siw *ServerInterfaceWrapper) UnpackSprites(w http.ResponseWriter, r *http.Request) {
	var params UnpackSpritesParams

	err := runtime.BindQueryParameter("form", true, false, "manifest_name", r.URL.Query(), &params.ManifestName)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "manifest_name", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UnpackSprites(w, r, params)
	})
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a query
// parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/pack", wrapper.PackSprites)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/unpack", wrapper.UnpackSprites)
	})

	return r
}
