package response_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/router"
)

// customStatusError is a test error that implements StatusCode() int
type customStatusError struct {
	message string
	status  int
}

func (e customStatusError) Error() string   { return e.message }
func (e customStatusError) StatusCode() int { return e.status }

func newCtx() (*router.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	return router.NewContext(w, httptest.NewRequest(http.MethodGet, "/status", nil)), w
}

func TestJSONWithStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      any
		status     int
		wantStatus int
		wantBody   string
	}{
		{name: "explicit status", value: map[string]int{"n": 1}, status: http.StatusCreated, wantStatus: http.StatusCreated, wantBody: `{"n":1}`},
		{name: "zero status with value", value: []int{1}, wantStatus: http.StatusOK, wantBody: `[1]`},
		{name: "zero status nil value", value: nil, wantStatus: http.StatusNoContent},
		{name: "no content drops body", value: "x", status: http.StatusNoContent, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			err := response.JSONWithStatus(tt.value, tt.status)(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody == "" {
				assert.Empty(t, w.Body.String())
				return
			}
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestNoStore(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, response.NoStore(response.String("ok"))(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "ok", w.Body.String())

	assert.Nil(t, response.NoStore(nil))
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("passes HTTPError through", func(t *testing.T) {
		t.Parallel()
		in := response.ErrForbidden.WithMessage("session expired")
		out := response.AsHTTPError(in)
		assert.Equal(t, in, out)
	})

	t.Run("finds wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		out := response.AsHTTPError(errors.Join(errors.New("ctx"), response.ErrConflict))
		assert.Equal(t, http.StatusConflict, out.Status)
	})

	t.Run("maps status code interface", func(t *testing.T) {
		t.Parallel()
		out := response.AsHTTPError(customStatusError{message: "gone", status: http.StatusNotFound})
		assert.Equal(t, "not_found", out.Code)
		assert.Equal(t, "gone", out.Details["cause"])
	})

	t.Run("unknown errors become 500 without leaking cause", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("dial tcp: refused")
		out := response.AsHTTPError(cause)
		assert.Equal(t, http.StatusInternalServerError, out.Status)
		assert.NotContains(t, out.Details, "cause")
		assert.ErrorIs(t, out, cause)
	})

	t.Run("with details does not mutate the base error", func(t *testing.T) {
		t.Parallel()
		_ = response.ErrBadRequest.WithDetails(map[string]any{"field": "email"})
		assert.Nil(t, response.ErrBadRequest.Details)
	})
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	ctx, w := newCtx()
	response.JSONErrorHandler(ctx, response.ErrNotFound.WithMessage("session not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, "session not found", body["message"])
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	ctx, w := newCtx()
	response.ErrorHandler(ctx, router.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.StatusText(http.StatusMethodNotAllowed), w.Body.String())
}

func TestLoggingJSONErrorHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
	h := response.LoggingJSONErrorHandler[*router.Context](log)

	ctx, w := newCtx()
	h(ctx, response.ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, buf.Len(), "client errors are not logged")

	ctx, w = newCtx()
	h(ctx, errors.New("store down"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "store down")
	assert.Contains(t, buf.String(), `"path":"/status"`)
}
