package sessiond

import (
	"errors"

	"github.com/dmitrymomot/sessiontrack/core/binder"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/session"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrPurgeDisabled = errors.New("purge is disabled, set ALLOW_PURGE=true")
)

var (
	errSessionExpired = response.ErrForbidden.WithMessage("session expired")
	errDuplicate      = response.ErrConflict.WithMessage("another active session holds this identity")
	errStorage        = response.ErrServiceUnavailable.WithMessage("session storage unavailable")
)

// httpError translates registry and binder errors into HTTP errors.
func httpError(err error) error {
	var verr *session.ValidationError

	switch {
	case errors.As(err, &verr):
		fields := make([]map[string]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, map[string]string{"field": f.Field, "rule": f.Rule})
		}
		return response.ErrBadRequest.
			WithMessage("missing or invalid fields").
			WithDetails(map[string]any{"fields": fields})
	case errors.Is(err, session.ErrTerminated):
		return response.ErrNotFound.WithMessage("session has ended")
	case errors.Is(err, session.ErrNotFound):
		return response.ErrNotFound.WithMessage("session not found")
	case errors.Is(err, session.ErrExpired):
		return errSessionExpired
	case errors.Is(err, session.ErrDuplicate):
		return errDuplicate
	case errors.Is(err, session.ErrStorageUnavailable), errors.Is(err, session.ErrLoginConflict),
		errors.Is(err, session.ErrUpdateConflict):
		return errStorage.WithError(err)
	case errors.Is(err, ErrPurgeDisabled):
		return response.ErrForbidden.WithMessage(ErrPurgeDisabled.Error())
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrRequestEntityTooLarge.WithError(err)
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseForm),
		errors.Is(err, binder.ErrFailedToParseQuery):
		return response.ErrBadRequest.WithError(err)
	default:
		return response.ErrInternalServerError.WithError(err)
	}
}
