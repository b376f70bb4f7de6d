package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the default request context. It delegates context.Context
// methods to the request context and reads path parameters from the matched pattern.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	values map[any]any
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

// NewContext builds a default context, mostly useful in tests of handlers.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return newContext(w, r)
}

func (c *Context) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *Context) Err() error                  { return c.r.Context().Err() }

// Value looks up values set with SetValue before falling back to the request context.
func (c *Context) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.r.Context().Value(key)
}

// Request returns the *http.Request associated with the context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of a path wildcard.
func (c *Context) Param(key string) string {
	return c.r.PathValue(key)
}

// SetValue stores a request-scoped value. Values are visible through Value
// and through the request context passed to responses.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
