// Package binder maps HTTP request data onto Go structs.
//
// JSON decodes application/json bodies; Form handles url-encoded and multipart
// bodies through `form` tags; Query reads `query` tags from the URL. Body picks
// JSON or Form from the Content-Type header, and Chain combines binders so a
// field may arrive in either the query string or the body:
//
//	type logoutRequest struct {
//		SessionID string `json:"sessionId" form:"sessionId" query:"sessionId"`
//	}
//
//	var req logoutRequest
//	if err := binder.Chain(binder.Query(), binder.Body())(r, &req); err != nil {
//		return response.Error(err)
//	}
//
// Bound strings are stripped of control characters. Bodies are limited to
// DefaultMaxBodySize; larger ones fail with ErrBodyTooLarge.
package binder
