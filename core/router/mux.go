package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/sessiontrack/core/handler"
)

var supportedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// routeTable is shared by a mux and every inline router derived from it.
type routeTable struct {
	mu      sync.RWMutex
	serve   *http.ServeMux
	paths   *http.ServeMux // method-less patterns, used to tell 404 from 405
	allowed map[string][]string
	routes  []Route
}

// mux is the private implementation of Router interface.
type mux[C handler.Context] struct {
	table        *routeTable
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	parent       *mux[C] // for inline groups
	inline       bool
	hasRoutes    bool
}

// newMux creates a new router instance.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		table: &routeTable{
			serve:   http.NewServeMux(),
			paths:   http.NewServeMux(),
			allowed: make(map[string][]string),
		},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			// Only the default *Context works without a factory.
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m.table.serve.HandleFunc("/", m.fallback)

	return m
}

// ServeHTTP implements http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.table.serve.ServeHTTP(w, r)
}

// fallback answers every request no registered pattern matched.
func (m *mux[C]) fallback(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	if !slices.Contains(supportedMethods, r.Method) {
		m.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	if _, pattern := m.table.paths.Handler(r); pattern != "" {
		m.table.mu.RLock()
		allowed := m.table.allowed[pattern]
		m.table.mu.RUnlock()
		if len(allowed) > 0 {
			// Set Allow header per RFC 7231 before responding with 405
			ww.Header().Set("Allow", strings.Join(allowed, ", "))
			m.errorHandler(ctx, ErrMethodNotAllowed)
			return
		}
	}

	m.errorHandler(ctx, ErrNotFound)
}

// serve adapts a typed handler to net/http, running the response and
// recovering from panics.
func (m *mux[C]) serve(fn handler.HandlerFunc[C]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.newContext(ww, r)

		// Recover from panics to prevent server crashes
		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{
					value: p,
					stack: debug.Stack(),
				}

				if ww.Written() {
					// Can't send error response, just log the panic
					m.logger.Error("panic after response written",
						"value", panicErr.value,
						"stack", string(panicErr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		response := fn(ctx)
		if response == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := response(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	}
}

// Get registers a handler for GET requests. HEAD is served by the same handler.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !slices.Contains(supportedMethods, method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// HandleHTTP mounts a plain http.Handler for GET requests.
func (m *mux[C]) HandleHTTP(pattern string, h http.Handler) {
	if h == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilHandler, pattern))
	}
	m.register(http.MethodGet, pattern, h)
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		inline:       true,
		parent:       m,
		table:        m.table,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes in registration order.
func (m *mux[C]) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()
	return slices.Clone(m.table.routes)
}

// handle chains the middleware of this router and every parent, outermost first.
func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilHandler, pattern))
	}

	var all []handler.Middleware[C]
	for curr := m; curr != nil; curr = curr.parent {
		all = append(slices.Clone(curr.middlewares), all...)
		curr.hasRoutes = true
	}

	m.register(method, pattern, m.serve(chain(all, fn)))
}

func (m *mux[C]) register(method, pattern string, h http.Handler) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	t := m.table
	t.mu.Lock()
	defer t.mu.Unlock()

	t.serve.Handle(method+" "+pattern, h)

	if _, known := t.allowed[pattern]; !known {
		t.paths.Handle(pattern, http.NotFoundHandler())
	}
	t.allowed[pattern] = append(t.allowed[pattern], method)
	if method == http.MethodGet {
		t.allowed[pattern] = append(t.allowed[pattern], http.MethodHead)
	}
	t.routes = append(t.routes, Route{Method: method, Pattern: pattern})
}

// chain builds a single handler from a middleware stack and endpoint.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint

	// Wrap in reverse order so the first middleware runs first
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}
