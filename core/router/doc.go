// Package router provides an HTTP router with type-safe handlers, middleware
// composition and a pluggable error handler, built on net/http.ServeMux.
//
// # Basic Usage
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//
//	r.Get("/{$}", welcome)
//	r.Post("/login", login)
//	r.Get("/sessions/{id}", func(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]string{"id": ctx.Param("id")})
//	})
//
//	http.ListenAndServe(":8080", r)
//
// Patterns follow ServeMux wildcard syntax. The method is supplied by the
// registration call, so patterns never carry a method prefix. GET routes also
// answer HEAD.
//
// # Middleware
//
// Use registers middleware for every route of the router and must be called
// before the first route. With and Group create inline routers that add
// middleware for a subset of routes:
//
//	r.Use(middleware.RequestID[*router.Context]())
//
//	r.With(middleware.AdminToken[*router.Context](token)).Group(func(admin router.Router[*router.Context]) {
//		admin.Post("/admin/terminate", terminate)
//	})
//
// # Errors
//
// Unmatched requests reach the error handler with ErrNotFound, or with
// ErrMethodNotAllowed (and an Allow header) when the path exists for other
// methods. Panics inside handlers are recovered and passed to the error handler
// as a PanicError unless the response was already written, in which case the
// panic is logged through the logger set with WithLogger.
//
// Errors implementing StatusCode() int are rendered with that status by the
// default handler. Everything else becomes 500.
//
// # Custom Context
//
// Any type implementing handler.Context can be used as C when the router is
// created with WithContextFactory.
package router
