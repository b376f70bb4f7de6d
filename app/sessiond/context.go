package sessiond

import (
	"net/http"

	"github.com/dmitrymomot/sessiontrack/core/binder"
	"github.com/dmitrymomot/sessiontrack/core/router"
	"github.com/dmitrymomot/sessiontrack/middleware"
)

// Context is the request context of the service handlers.
type Context struct {
	*router.Context
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Context: router.NewContext(w, r)}
}

var (
	bindBody  = binder.Body()
	bindQuery = binder.Query()
	bindAny   = binder.Chain(binder.Query(), binder.Body())
)

// BindBody decodes a JSON or form body into v.
func (c *Context) BindBody(v any) error {
	return bindBody(c.Request(), v)
}

// BindQuery decodes query parameters into v.
func (c *Context) BindQuery(v any) error {
	return bindQuery(c.Request(), v)
}

// Bind reads query parameters, then the body; body fields win.
func (c *Context) Bind(v any) error {
	return bindAny(c.Request(), v)
}

// ClientIP returns the address resolved by the client ip middleware.
func (c *Context) ClientIP() string {
	return middleware.ClientIPOrRequest(c)
}
