package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// DefaultMaxBodySize is the default maximum size for request bodies (64KB).
const DefaultMaxBodySize = 64 << 10

// JSON creates a JSON binder limited to DefaultMaxBodySize.
// Unknown fields are ignored so clients may send additional attributes.
func JSON() Binder {
	return JSONWithLimit(DefaultMaxBodySize)
}

// JSONWithLimit creates a JSON binder with a custom body limit.
func JSONWithLimit(limit int64) Binder {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return func(r *http.Request, v any) error {
		// Fail fast if request context is already cancelled to avoid processing doomed requests
		if err := r.Context().Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		if mt := mediaType(r.Header.Get("Content-Type")); mt != "application/json" {
			if mt == "" {
				return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
			}
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mt)
		}

		// Read with +1 byte to detect oversized requests
		body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			return fmt.Errorf("%w: failed to read request body: %v", ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > limit {
			return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, limit)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		// Reject trailing data after the JSON value
		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		sanitizeStrings(reflect.ValueOf(v))
		return nil
	}
}

// sanitizeStrings walks v and strips control characters from every settable string.
func sanitizeStrings(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			sanitizeStrings(rv.Elem())
		}
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(sanitizeStringValue(rv.String()))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Field(i); f.CanSet() {
				sanitizeStrings(f)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			sanitizeStrings(rv.Index(i))
		}
	}
}
