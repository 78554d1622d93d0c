package adapter

import (
	"fmt"
	"strings"
)

// Handler answers one routed request, writing its outcome onto res.
type Handler func(req *Request, res *Response)

// Router is a minimal method+path route table (spec §6's "createRouter(),
// mountRouter(parent, path, child), get(path, handler), post(path,
// handler)"). Paths are matched exactly, no parameter segments — a test
// journey's routes are few and fixed, and Params is already carried
// separately on Request for anything path-parameter-shaped a handler
// needs.
type Router struct {
	routes map[string]map[string]Handler // method -> path -> handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: map[string]map[string]Handler{}}
}

// Get registers a GET handler for path.
func (r *Router) Get(path string, h Handler) { r.register("GET", path, h) }

// Post registers a POST handler for path.
func (r *Router) Post(path string, h Handler) { r.register("POST", path, h) }

func (r *Router) register(method, path string, h Handler) {
	byPath, ok := r.routes[method]
	if !ok {
		byPath = map[string]Handler{}
		r.routes[method] = byPath
	}
	byPath[path] = h
}

// MountRouter copies every route registered on child onto parent, prefixed
// by path (spec §6, "mountRouter(parent, path, child)"). A child mounted
// twice, or after parent already owns one of its routes, overwrites the
// earlier registration — the last mount wins, matching an ordinary router
// library's last-registration-wins semantics.
func MountRouter(parent *Router, path string, child *Router) {
	for method, byPath := range child.routes {
		for childPath, h := range byPath {
			parent.register(method, joinPath(path, childPath), h)
		}
	}
}

func joinPath(prefix, suffix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	suffix = strings.TrimPrefix(suffix, "/")
	if suffix == "" {
		return prefix
	}
	return prefix + "/" + suffix
}

// Dispatch finds the handler registered for req's method and path and runs
// it against a fresh Response, or reports false when no route matches.
func (r *Router) Dispatch(req *Request, res *Response) bool {
	byPath, ok := r.routes[req.Method]
	if !ok {
		return false
	}
	h, ok := byPath[req.Path]
	if !ok {
		return false
	}
	h(req, res)
	return true
}

// String renders the router's registered routes, one "METHOD path" per
// line, for debugging. Line order follows Go map iteration and is not
// stable between calls.
func (r *Router) String() string {
	var sb strings.Builder
	for method, byPath := range r.routes {
		for path := range byPath {
			fmt.Fprintf(&sb, "%s %s\n", method, path)
		}
	}
	return sb.String()
}
