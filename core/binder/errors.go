package binder

import "errors"

// Error variables define common binding failures that can occur during request processing.
var (
	// ErrUnsupportedMediaType indicates the Content-Type header specifies a media type
	// that the binder doesn't support.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON indicates the request body contains invalid JSON
	// or doesn't match the target struct schema.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseForm indicates form data parsing failed.
	ErrFailedToParseForm = errors.New("failed to parse form data")

	// ErrFailedToParseQuery indicates query parameter parsing failed,
	// typically due to type conversion errors.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")

	// ErrMissingContentType indicates the request lacks a Content-Type header
	// when one is required for parsing.
	ErrMissingContentType = errors.New("missing content type")

	// ErrBodyTooLarge indicates the request body exceeds the binder limit.
	ErrBodyTooLarge = errors.New("request body too large")
)
