package binder

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Binder represents a function that binds HTTP request data to a Go value.
type Binder func(r *http.Request, v any) error

// Body picks the binder matching the request Content-Type: JSON for
// application/json, Form for url-encoded and multipart bodies.
// A request without a body and without a Content-Type binds nothing.
func Body() Binder {
	json, form := JSON(), Form()
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			if r.ContentLength == 0 || r.Body == nil || r.Body == http.NoBody {
				return nil
			}
			return fmt.Errorf("%w: request has a body but no content-type header", ErrMissingContentType)
		}

		switch mt := mediaType(contentType); mt {
		case "application/json":
			return json(r, v)
		case "application/x-www-form-urlencoded", "multipart/form-data":
			return form(r, v)
		default:
			return fmt.Errorf("%w: got %s", ErrUnsupportedMediaType, mt)
		}
	}
}

// Chain runs binders in order; later binders overwrite fields set by earlier ones.
func Chain(binders ...Binder) Binder {
	return func(r *http.Request, v any) error {
		for _, b := range binders {
			if err := b(r, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// mediaType strips parameters such as charset or boundary.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		if idx := strings.Index(contentType, ";"); idx != -1 {
			contentType = contentType[:idx]
		}
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
