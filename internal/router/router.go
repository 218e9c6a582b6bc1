package router

import (
	"net/http"
	"slices"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-scoped patterns on a shared http.ServeMux and
// wraps each one in the middleware in effect when it was registered.
type Router struct {
	mux *http.ServeMux
	mw  []Middleware
}

// New returns a Router whose middleware applies to every route, listed
// outermost first.
func New(mw ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), mw: mw}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers pattern for GET. The mux answers HEAD for it as well.
func (r *Router) Get(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *Router) Handle(method, pattern string, h http.Handler, mw ...Middleware) {
	chain := slices.Concat(r.mw, mw)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	r.mux.Handle(method+" "+pattern, h)
}

// Group returns a Router on the same mux whose routes also pass through mw.
// Routes registered on the parent are unaffected.
func (r *Router) Group(mw ...Middleware) *Router {
	return &Router{mux: r.mux, mw: slices.Concat(r.mw, mw)}
}
