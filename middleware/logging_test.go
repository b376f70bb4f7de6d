package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/router"
	"github.com/dmitrymomot/sessiontrack/middleware"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))

	r := router.New[*router.Context](router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
	r.Use(
		middleware.ClientIP[*router.Context](),
		middleware.LoggingWithLogger[*router.Context](log),
	)
	r.Get("/status", ok())
	r.Get("/missing", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrNotFound)
	})
	r.Get("/boom", func(ctx *router.Context) handler.Response {
		return response.Error(errors.New("store down"))
	})

	req := httptest.NewRequest(http.MethodGet, "/status?sessionId=s1", nil)
	req.RemoteAddr = "192.0.2.4:1000"
	do(r, req)
	do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	lines := logLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "HTTP request completed", lines[0]["msg"])
	assert.Equal(t, "/status", lines[0]["path"])
	assert.Equal(t, "sessionId=s1", lines[0]["query"])
	assert.Equal(t, "192.0.2.4", lines[0]["client_ip"])
	assert.EqualValues(t, http.StatusOK, lines[0]["status"])
	assert.EqualValues(t, 2, lines[0]["bytes_out"])

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.EqualValues(t, http.StatusNotFound, lines[1]["status"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.EqualValues(t, http.StatusInternalServerError, lines[2]["status"])
	assert.Equal(t, "store down", lines[2]["error"])
}

func TestLoggingSkipFunction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))

	r := router.New[*router.Context]()
	r.Use(middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
		Logger: log,
		Skip:   func(ctx handler.Context) bool { return strings.HasPrefix(ctx.Request().URL.Path, "/health") },
	}))
	r.Get("/health/live", ok())

	w := do(r, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, buf.Len())
}
