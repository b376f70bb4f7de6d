package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/response"
)

// AdminTokenConfig configures the admin token gate.
type AdminTokenConfig struct {
	// Token is the shared secret. An empty token rejects every request.
	Token string
	// HeaderName carries the token (default: "X-Admin-Token").
	// "Authorization: Bearer <token>" is accepted as well.
	HeaderName string
}

// AdminToken rejects requests that do not present token.
func AdminToken[C handler.Context](token string) handler.Middleware[C] {
	return AdminTokenWithConfig[C](AdminTokenConfig{Token: token})
}

// AdminTokenWithConfig compares the presented token in constant time.
// Missing tokens answer 401, wrong tokens and a disabled gate answer 403.
func AdminTokenWithConfig[C handler.Context](cfg AdminTokenConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Admin-Token"
	}
	want := []byte(cfg.Token)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if len(want) == 0 {
				return response.Error(response.ErrForbidden.WithMessage("admin api is disabled"))
			}

			got := presentedToken(ctx, cfg.HeaderName)
			if got == "" {
				return response.Error(response.ErrUnauthorized.WithMessage("admin token required"))
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				return response.Error(response.ErrForbidden.WithMessage("invalid admin token"))
			}
			return next(ctx)
		}
	}
}

func presentedToken(ctx handler.Context, header string) string {
	h := ctx.Request().Header
	if v := strings.TrimSpace(h.Get(header)); v != "" {
		return v
	}
	auth := h.Get("Authorization")
	if scheme, tok, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return ""
}
