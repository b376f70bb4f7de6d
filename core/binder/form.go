package binder

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxMemory is the maximum memory used for parsing multipart forms (1MB).
const DefaultMaxMemory = 1 << 20

// Form creates a binder for application/x-www-form-urlencoded and
// multipart/form-data bodies. Fields bind through `form:"name"` tags;
// untagged fields use the lowercased field name. Uploaded files are ignored.
func Form() Binder {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
		}

		var values map[string][]string

		switch mt := mediaType(contentType); mt {
		case "application/x-www-form-urlencoded":
			r.Body = http.MaxBytesReader(nil, r.Body, DefaultMaxBodySize)
			if err := r.ParseForm(); err != nil {
				return formError(err)
			}
			values = r.PostForm

		case "multipart/form-data":
			_, params, err := mime.ParseMediaType(contentType)
			if err != nil {
				return fmt.Errorf("%w: malformed content type with boundary", ErrFailedToParseForm)
			}
			if !validateBoundary(params["boundary"]) {
				return fmt.Errorf("%w: invalid boundary parameter", ErrFailedToParseForm)
			}
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return formError(err)
			}
			defer func() { _ = r.MultipartForm.RemoveAll() }()
			values = r.MultipartForm.Value

		default:
			return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mt)
		}

		return bindToStruct(v, "form", values, ErrFailedToParseForm)
	}
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, DefaultMaxBodySize)
	}
	return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
}

// validateBoundary rejects empty, oversized or control-character boundaries.
func validateBoundary(boundary string) bool {
	if boundary == "" || len(boundary) > 70 {
		return false
	}
	return !strings.ContainsAny(boundary, "\x00\r\n")
}
