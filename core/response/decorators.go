package response

import (
	"net/http"

	"github.com/dmitrymomot/sessiontrack/core/handler"
)

// WithHeaders wraps a response with custom HTTP headers.
// Headers are set before the wrapped response is rendered.
func WithHeaders(response handler.Response, headers map[string]string) handler.Response {
	if response == nil || len(headers) == 0 {
		return response
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		return response(w, r)
	}
}

// NoStore marks a response as uncacheable. Session state must never be served from a cache.
func NoStore(response handler.Response) handler.Response {
	return WithHeaders(response, map[string]string{
		"Cache-Control": "no-store",
		"Pragma":        "no-cache",
	})
}
