package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/health"
	"github.com/dmitrymomot/sessiontrack/core/router"
)

func serve(t *testing.T, h handler.HandlerFunc[*router.Context]) *httptest.ResponseRecorder {
	t.Helper()
	r := router.New[*router.Context]()
	r.Get("/check", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check", nil))
	return w
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	w := serve(t, health.Liveness[*router.Context])
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()
		w := serve(t, health.Readiness[*router.Context](nil,
			health.Check{Name: "mongo", Fn: ok},
			health.Check{Name: "redis", Fn: ok},
		))
		require.Equal(t, http.StatusOK, w.Code)

		var rep health.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
		assert.Equal(t, "READY", rep.Status)
		assert.Equal(t, map[string]string{"mongo": "ok", "redis": "ok"}, rep.Checks)
	})

	t.Run("one failing check", func(t *testing.T) {
		t.Parallel()
		w := serve(t, health.Readiness[*router.Context](nil,
			health.Check{Name: "mongo", Fn: ok},
			health.Check{Name: "redis", Fn: down},
		))
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var rep health.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
		assert.Equal(t, "NOT_READY", rep.Status)
		assert.Equal(t, "unavailable", rep.Checks["redis"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		t.Parallel()
		w := serve(t, health.Readiness[*router.Context](nil, health.Check{Name: "slow", Fn: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		}}))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
