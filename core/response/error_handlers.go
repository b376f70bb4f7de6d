package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/logger"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// AsHTTPError converts any error to an HTTPError.
// HTTPError values pass through; errors exposing StatusCode() int are mapped
// to the predefined error for that status; everything else becomes 500.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = ErrInternalServerError
	}

	return baseErr.WithError(err)
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler returns errors as JSON responses.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

// LoggingJSONErrorHandler renders errors like JSONErrorHandler and logs server errors
// together with their cause.
func LoggingJSONErrorHandler[C handler.Context](log *slog.Logger) handler.ErrorHandler[C] {
	if log == nil {
		return JSONErrorHandler[C]
	}
	return func(ctx C, err error) {
		httpErr := AsHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError {
			log.ErrorContext(ctx, "request failed",
				logger.Error(err),
				logger.Status(httpErr.Status),
				logger.Method(ctx.Request().Method),
				logger.Path(ctx.Request().URL.Path),
			)
		}
		Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
	}
}
