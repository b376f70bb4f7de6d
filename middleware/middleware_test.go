package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/router"
)

func ok() handler.HandlerFunc[*router.Context] {
	return func(ctx *router.Context) handler.Response {
		return response.String("ok")
	}
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
