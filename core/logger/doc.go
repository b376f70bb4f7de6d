// Package logger builds slog loggers with environment presets, context-aware
// attribute extraction and a set of nil-safe attribute helpers.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "sessiond"),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "session created",
//		logger.SessionID(rec.SessionID),
//		logger.ClientIP(rec.ClientAddress),
//	)
//
// Development writes text at debug level; staging and production write JSON at
// info level. Every preset tags records with the service name and environment.
//
// # Context Extractors
//
// A ContextExtractor runs for every record logged through a *Context method
// and may add one attribute:
//
//	func sessionExtractor(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(sessionKey{}).(string)
//		return logger.SessionID(id), ok
//	}
//
// # Attribute Helpers
//
// Helpers return an empty attribute for nil errors and empty strings, which slog
// drops, so optional fields can be passed unconditionally:
//
//	log.Error("store call failed", logger.Error(err), logger.SessionID(id))
package logger
