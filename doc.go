// Package sessiontrack is a session tracking service: it records client
// logins, enforces one active session per (email, nickname) identity and
// expires sessions that stay idle longer than a configured threshold.
//
// # Package Organization
//
// Core packages carry the domain and the HTTP framework it is served with:
//
//   - github.com/dmitrymomot/sessiontrack/core/session: registry, lifecycle rules, inactivity monitor, Store contract, in-memory store
//   - github.com/dmitrymomot/sessiontrack/core/router: generic router on net/http.ServeMux with typed contexts
//   - github.com/dmitrymomot/sessiontrack/core/handler: Response, HandlerFunc and Middleware types
//   - github.com/dmitrymomot/sessiontrack/core/response: JSON responses, HTTP errors and error handlers
//   - github.com/dmitrymomot/sessiontrack/core/binder: JSON, form and query binding
//   - github.com/dmitrymomot/sessiontrack/core/config: environment loading with caching
//   - github.com/dmitrymomot/sessiontrack/core/logger: slog presets and attribute helpers
//   - github.com/dmitrymomot/sessiontrack/core/server: HTTP server with graceful shutdown
//   - github.com/dmitrymomot/sessiontrack/core/health: liveness and readiness handlers
//
// Middleware:
//
//   - github.com/dmitrymomot/sessiontrack/middleware: request id, client ip, request logging, admin token
//
// Storage backends implementing session.Store:
//
//   - github.com/dmitrymomot/sessiontrack/integration/sessionstore/mongostore: MongoDB collection with a partial unique index
//   - github.com/dmitrymomot/sessiontrack/integration/sessionstore/pgstore: PostgreSQL table managed by goose migrations
//   - github.com/dmitrymomot/sessiontrack/integration/sessionstore/redisstore: Redis keys with Lua scripts, plus a distributed Locker
//
// Connection helpers with retry and health checks live under
// integration/database/{mongo,pg,redis}.
//
// Utilities:
//
//   - github.com/dmitrymomot/sessiontrack/pkg/clientip: client address resolution from proxy headers
//   - github.com/dmitrymomot/sessiontrack/pkg/netinfo: address and hardware id of the serving host
//
// # Running
//
// The service is assembled in app/sessiond and started by cmd/sessiond:
//
//	SESSION_STORE=postgres PG_CONN_URL=postgres://... sessiond serve
//	sessiond purge --force
//	sessiond version
package sessiontrack
