package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/response"
)

// DefaultCheckTimeout bounds each dependency check.
const DefaultCheckTimeout = 2 * time.Second

// Check is a named dependency check.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness runs every check concurrently, each bounded by DefaultCheckTimeout.
// Returns 200 with status "READY" when all pass, 503 with status "NOT_READY" otherwise.
//
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "mongo", Fn: mongo.Healthcheck(client)},
//	))
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx C) handler.Response {
		report := Report{Status: "READY", Checks: make(map[string]string, len(checks))}
		var mu sync.Mutex

		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
				defer cancel()

				result := "ok"
				if err := c.Fn(cctx); err != nil {
					log.ErrorContext(ctx, "readiness check failed", logger.Component(c.Name), logger.Error(err))
					result = "unavailable"
				}

				mu.Lock()
				report.Checks[c.Name] = result
				if result != "ok" {
					report.Status = "NOT_READY"
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		status := 200
		if report.Status != "READY" {
			status = 503
		}
		return response.NoStore(response.JSONWithStatus(report, status))
	}
}
