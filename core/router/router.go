package router

import (
	"net/http"

	"github.com/dmitrymomot/sessiontrack/core/handler"
)

// Router is the main routing interface for handling HTTP requests.
// Patterns use net/http.ServeMux syntax without the method prefix:
// "/status", "/sessions/{id}", "/{$}" for the exact root.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])

	// Generic handlers
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)
	// HandleHTTP mounts a plain http.Handler for GET requests, bypassing the middleware chain.
	HandleHTTP(pattern string, h http.Handler)

	// Middleware
	Use(middlewares ...handler.Middleware[C])
	With(middlewares ...handler.Middleware[C]) Router[C]

	// Grouping
	Group(fn func(r Router[C])) Router[C]
}

// Routes provides route introspection capabilities for debugging and monitoring.
type Routes interface {
	Routes() []Route
}

// Route describes a single route in the router with its HTTP method and pattern.
type Route struct {
	Method  string
	Pattern string
}

// New creates a new router with the given options.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
