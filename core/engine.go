package core

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/cndoit18/codecrafters-http-server-go/core/http"
	"github.com/cndoit18/codecrafters-http-server-go/core/middleware"
	"github.com/cndoit18/codecrafters-http-server-go/core/observability"
	"github.com/cndoit18/codecrafters-http-server-go/core/router"
)

// Engine is an HTTP/1.1 server: routes are registered up front, then Serve
// freezes the route table and handles every accepted connection on its own
// goroutine.
type Engine struct {
	router     *router.Router
	middleware *middleware.Pipeline
	monitor    *observability.RouteMonitor
	logger     zerolog.Logger

	maxConnections int
	maxHeaderBytes int
	maxBodyBytes   int
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

// NewEngine creates a new engine instance
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		router:         router.New(),
		middleware:     middleware.NewPipeline(),
		monitor:        observability.NewRouteMonitor(),
		logger:         zerolog.Nop(),
		maxHeaderBytes: http.DefaultMaxHeaderBytes,
		maxBodyBytes:   http.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle registers handler for method and pattern. Registering an existing
// method and pattern replaces the previous handler. It panics once Serve has
// started.
func (e *Engine) Handle(method http.Method, pattern string, handler http.Handler) {
	e.router.Add(method, pattern, handler)
	e.logger.Debug().
		Stringer("method", method).
		Str("pattern", pattern).
		Msg("route registered")
}

// Use wraps every routed handler with mw. The unmatched-route 404 bypasses
// middleware. It panics once Serve has started.
func (e *Engine) Use(mw ...middleware.Middleware) {
	if e.router.Frozen() {
		panic("core: Use called after Serve")
	}
	e.middleware.Use(mw...)
}

// GET registers a GET route
func (e *Engine) GET(pattern string, handler http.HandlerFunc) {
	e.Handle(http.MethodGet, pattern, handler)
}

// POST registers a POST route
func (e *Engine) POST(pattern string, handler http.HandlerFunc) {
	e.Handle(http.MethodPost, pattern, handler)
}

// Stats returns request counters per matched route pattern
func (e *Engine) Stats() observability.Stats {
	return e.monitor.Stats()
}

// Listen binds a TCP listener on addr
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: controlSocket}
	return lc.Listen(ctx, "tcp", addr)
}

// Run listens on addr and serves until the listener fails
func (e *Engine) Run(addr string) error {
	ln, err := Listen(context.Background(), addr)
	if err != nil {
		return err
	}
	return e.Serve(ln)
}

// Serve accepts connections on ln forever. The route table is frozen before
// the first Accept. The first accept error closes ln and is returned.
func (e *Engine) Serve(ln net.Listener) error {
	e.router.Freeze()

	if e.maxConnections > 0 {
		ln = netutil.LimitListener(ln, e.maxConnections)
	}
	defer ln.Close()

	e.logger.Info().
		Str("addr", ln.Addr().String()).
		Int("max_connections", e.maxConnections).
		Msg("server listening")

	for {
		nc, err := ln.Accept()
		if err != nil {
			return err
		}
		c := e.newConnection(nc)
		go c.serve()
	}
}
