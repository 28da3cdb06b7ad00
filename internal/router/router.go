// Package router is a thin wrapper around net/http's ServeMux that adds
// middleware chaining and prefix-based route groups.
package router

import (
	"net/http"
	"slices"
	"strings"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-qualified routes on a shared ServeMux. Groups share
// the mux but carry their own prefix and middleware chain.
type Router struct {
	mux    *http.ServeMux
	prefix string
	chain  []Middleware
}

// New creates a root router.
func New() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends middleware to this router's chain. Must be called before the
// routes it should apply to are registered.
func (r *Router) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Group returns a sub-router mounted under prefix with additional middleware.
func (r *Router) Group(prefix string, middleware ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		prefix: r.prefix + strings.TrimSuffix(prefix, "/"),
		chain:  append(slices.Clone(r.chain), middleware...),
	}
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a GET route.
func (r *Router) Get(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodGet, pattern, handler)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodPost, pattern, handler)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodPut, pattern, handler)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodPatch, pattern, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodDelete, pattern, handler)
}

// Handle registers a route with an explicit method, applying the router's
// middleware chain outermost-first.
func (r *Router) Handle(method, pattern string, handler http.Handler) {
	wrapped := handler
	for _, m := range slices.Backward(r.chain) {
		wrapped = m(wrapped)
	}
	r.mux.Handle(method+" "+r.prefix+pattern, wrapped)
}
