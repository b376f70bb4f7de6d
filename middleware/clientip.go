package middleware

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/pkg/clientip"
)

// clientIPContextKey is used as a key for storing client IP in request context.
type clientIPContextKey struct{}

// ClientIPConfig configures the client IP extraction middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// HeaderName specifies the response header name for the client IP (default: "X-Client-IP")
	HeaderName string
	// StoreInHeader determines whether to echo the IP in response headers
	StoreInHeader bool
}

// ClientIP stores the client address in the request context.
func ClientIP[C handler.Context]() handler.Middleware[C] {
	return ClientIPWithConfig[C](ClientIPConfig{})
}

// ClientIPWithConfig resolves the client address with pkg/clientip and stores it in context.
func ClientIPWithConfig[C handler.Context](cfg ClientIPConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			ip := clientip.GetIP(ctx.Request())
			ctx.SetValue(clientIPContextKey{}, ip)

			resp := next(ctx)
			if !cfg.StoreInHeader {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(cfg.HeaderName, ip)
				return resp(w, r)
			}
		}
	}
}

// GetClientIP retrieves the client IP address from the request context.
// Returns the IP address and a boolean indicating whether it was found.
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok
}

// ClientIPOrRequest returns the stored client address, resolving it from the
// request when the middleware did not run.
func ClientIPOrRequest(ctx handler.Context) string {
	if ip, ok := GetClientIP(ctx); ok {
		return ip
	}
	return clientip.GetIP(ctx.Request())
}
