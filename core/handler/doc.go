// Package handler defines the request processing contract shared by the router,
// the response helpers and the middleware packages.
//
// A handler receives a typed request context and returns a Response, a function
// that renders headers, status and body. Rendering errors flow to the router's
// ErrorHandler, so handlers can return domain errors directly:
//
//	func status(ctx *router.Context) handler.Response {
//		snap, err := registry.Status(ctx, ctx.Request().URL.Query().Get("sessionId"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(snap)
//	}
//
// Middleware wraps a HandlerFunc and may short-circuit by returning its own Response:
//
//	func requireHeader[C handler.Context](name string) handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				if ctx.Request().Header.Get(name) == "" {
//					return response.Error(response.ErrBadRequest)
//				}
//				return next(ctx)
//			}
//		}
//	}
package handler
