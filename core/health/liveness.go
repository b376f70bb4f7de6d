package health

import (
	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/response"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.NoStore(response.String("ALIVE"))
}
