package middleware

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cndoit18/codecrafters-http-server-go/core/http"
)

// Middleware wraps a handler with extra behaviour
type Middleware func(next http.Handler) http.Handler

// Pipeline is an ordered list of middlewares. The first middleware added is
// the outermost.
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{
		middlewares: make([]Middleware, 0, 4),
	}
}

// Use appends middlewares to the pipeline
func (p *Pipeline) Use(mw ...Middleware) *Pipeline {
	p.middlewares = append(p.middlewares, mw...)
	return p
}

// Then returns final wrapped by every middleware in the pipeline
func (p *Pipeline) Then(final http.Handler) http.Handler {
	// Fast path: no middlewares
	if len(p.middlewares) == 0 {
		return final
	}

	h := final
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		h = p.middlewares[i](h)
	}
	return h
}

// PanicError is returned by Recovery when the wrapped handler panics
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Recovery turns a handler panic into a returned *PanicError
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if v := recover(); v != nil {
					resp, err = nil, &PanicError{Value: v}
				}
			}()
			return next.Handle(req)
		})
	}
}

// AccessLog logs every handled request at debug level
func AccessLog(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Handle(req)

			ev := logger.Debug().
				Stringer("method", req.Method).
				Str("path", req.Path).
				Dur("elapsed", time.Since(start))
			if resp != nil {
				ev = ev.Str("status", resp.Status)
			}
			ev.Err(err).Msg("handled")
			return resp, err
		})
	}
}
