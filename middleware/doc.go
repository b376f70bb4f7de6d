// Package middleware provides HTTP middleware for the typed router.
//
// All middleware follow the same shape: a constructor with defaults and a
// WithConfig variant taking a config struct.
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//	)
//
//	r.Group(func(admin router.Router[*router.Context]) {
//		admin.Use(middleware.AdminToken[*router.Context](cfg.AdminToken))
//		admin.Post("/admin/terminate", terminate)
//	})
//
// Values stored by RequestID and ClientIP are readable from the handler
// context and from the request context seen by responses:
//
//	id, _ := middleware.GetRequestID(ctx)
//	ip := middleware.ClientIPOrRequest(ctx)
//
// RequestIDExtractor plugs into logger.WithContextExtractors so every record
// logged with the request context carries the request id.
package middleware
