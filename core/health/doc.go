// Package health provides HTTP handlers for service health monitoring.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "mongo", Fn: mongo.Healthcheck(client)},
//		health.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
//	))
//
// Checks follow the func(context.Context) error signature exposed by the
// integration/database packages.
package health
