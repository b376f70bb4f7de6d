package binder

import (
	"net/http"
)

// Query creates a query parameter binder function.
//
// Struct tags select parameter names:
//   - `query:"name"` binds parameter "name"
//   - `query:"-"` skips the field
//
// Supported field types are string, signed integers, bool, pointers to those
// and slices for repeated parameters.
//
//	type statusRequest struct {
//		SessionID string `query:"sessionId"`
//	}
func Query() Binder {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
