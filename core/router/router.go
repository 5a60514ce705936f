package router

import (
	"strings"
	"sync/atomic"

	"github.com/cndoit18/codecrafters-http-server-go/core/http"
)

// Router maps (method, path) to a handler through one segment trie per method.
//
// Patterns are '/'-separated segments, each either a literal or a {name}
// wildcard matching exactly one non-empty segment. Registering the same
// method and pattern twice keeps the last handler.
//
// A Router is built single-threaded and then frozen; after Freeze it is safe
// for concurrent Resolve calls and rejects further Add calls.
type Router struct {
	trees  map[http.Method]*node
	frozen atomic.Bool
}

type node struct {
	children map[string]*node // literal segment -> child
	wildcard *node            // {name} child

	// set on nodes that terminate a registered pattern
	handler    http.Handler
	pattern    string
	paramNames []string
}

// Match is the result of a successful Resolve
type Match struct {
	Handler http.Handler
	Pattern string
	Params  map[string]string
}

// New creates an empty router
func New() *Router {
	return &Router{trees: make(map[http.Method]*node)}
}

// Add registers handler for method and pattern. It panics on a malformed
// pattern or when the router is frozen.
func (r *Router) Add(method http.Method, pattern string, handler http.Handler) {
	if r.frozen.Load() {
		panic("router: Add called after Freeze")
	}
	if handler == nil {
		panic("router: nil handler for " + pattern)
	}
	segments, names := compilePattern(pattern)

	root := r.trees[method]
	if root == nil {
		root = &node{}
		r.trees[method] = root
	}

	n := root
	for _, seg := range segments {
		if isWildcard(seg) {
			if n.wildcard == nil {
				n.wildcard = &node{}
			}
			n = n.wildcard
			continue
		}
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[seg]
		if !ok {
			child = &node{}
			n.children[seg] = child
		}
		n = child
	}

	n.handler = handler
	n.pattern = pattern
	n.paramNames = names
}

// Freeze makes the route table read-only
func (r *Router) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called
func (r *Router) Frozen() bool {
	return r.frozen.Load()
}

// Resolve finds the handler registered for method whose pattern matches path.
// Literal segments take precedence over wildcards; when a literal branch
// dead-ends the wildcard branch is tried instead.
func (r *Router) Resolve(method http.Method, path string) (Match, bool) {
	root := r.trees[method]
	if root == nil || !strings.HasPrefix(path, "/") {
		return Match{}, false
	}

	segments := splitPath(path)
	values := make([]string, 0, len(segments))
	n, values := root.find(segments, values)
	if n == nil {
		return Match{}, false
	}

	params := make(map[string]string, len(n.paramNames))
	for i, name := range n.paramNames {
		params[name] = values[i]
	}
	return Match{Handler: n.handler, Pattern: n.pattern, Params: params}, true
}

// find walks the trie depth-first, collecting wildcard values in order
func (n *node) find(segments []string, values []string) (*node, []string) {
	if len(segments) == 0 {
		if n.handler != nil {
			return n, values
		}
		return nil, values
	}

	seg, rest := segments[0], segments[1:]
	if child, ok := n.children[seg]; ok {
		if found, v := child.find(rest, values); found != nil {
			return found, v
		}
	}
	if n.wildcard != nil && seg != "" {
		if found, v := n.wildcard.find(rest, append(values, seg)); found != nil {
			return found, v
		}
	}
	return nil, values
}

func splitPath(path string) []string {
	return strings.Split(path[1:], "/")
}

func isWildcard(seg string) bool {
	return len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

// compilePattern validates pattern and returns its segments plus the wildcard names in order
func compilePattern(pattern string) (segments, names []string) {
	if !strings.HasPrefix(pattern, "/") {
		panic("router: pattern must begin with '/': " + pattern)
	}

	segments = splitPath(pattern)
	seen := make(map[string]bool)
	for _, seg := range segments {
		if isWildcard(seg) {
			name := seg[1 : len(seg)-1]
			if strings.ContainsAny(name, "{}") {
				panic("router: malformed wildcard in " + pattern)
			}
			if seen[name] {
				panic("router: duplicate wildcard {" + name + "} in " + pattern)
			}
			seen[name] = true
			names = append(names, name)
			continue
		}
		if strings.ContainsAny(seg, "{}") {
			panic("router: wildcards must span a whole segment: " + pattern)
		}
	}
	return segments, names
}
