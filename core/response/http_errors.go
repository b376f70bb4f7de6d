package response

import (
	"maps"
	"net/http"
)

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context

	cause error
}

// NewHTTPError creates an error with the given status, code and message.
func NewHTTPError(status int, code, message string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: message}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap returns the error attached with WithError.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with details merged in.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// WithError returns a copy of the error wrapping err. The cause text is only
// exposed in Details for client errors; server errors keep it for logging.
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	e.cause = err
	if e.Status < http.StatusInternalServerError {
		return e.WithDetails(map[string]any{"cause": err.Error()})
	}
	return e
}

func newError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest            = newError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized          = newError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden             = newError(http.StatusForbidden, "forbidden")
	ErrNotFound              = newError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed      = newError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrRequestTimeout        = newError(http.StatusRequestTimeout, "request_timeout")
	ErrConflict              = newError(http.StatusConflict, "conflict")
	ErrRequestEntityTooLarge = newError(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	ErrUnsupportedMediaType  = newError(http.StatusUnsupportedMediaType, "unsupported_media_type")
	ErrUnprocessableEntity   = newError(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests       = newError(http.StatusTooManyRequests, "too_many_requests")

	ErrInternalServerError = newError(http.StatusInternalServerError, "internal_server_error")
	ErrNotImplemented      = newError(http.StatusNotImplemented, "not_implemented")
	ErrServiceUnavailable  = newError(http.StatusServiceUnavailable, "service_unavailable")
	ErrGatewayTimeout      = newError(http.StatusGatewayTimeout, "gateway_timeout")
)

// httpErrorsByStatus maps HTTP status codes to their corresponding HTTPError values
var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusRequestTimeout:        ErrRequestTimeout,
	http.StatusConflict:              ErrConflict,
	http.StatusRequestEntityTooLarge: ErrRequestEntityTooLarge,
	http.StatusUnsupportedMediaType:  ErrUnsupportedMediaType,
	http.StatusUnprocessableEntity:   ErrUnprocessableEntity,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusNotImplemented:        ErrNotImplemented,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}
