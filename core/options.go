package core

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithReadTimeout bounds the wait for each request. Zero waits forever.
func WithReadTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.readTimeout = d
	}
}

// WithWriteTimeout bounds each response write. Zero waits forever.
func WithWriteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.writeTimeout = d
	}
}

// WithMaxConnections caps concurrently open connections. Zero means unlimited.
func WithMaxConnections(n int) Option {
	return func(e *Engine) {
		e.maxConnections = n
	}
}

// WithMaxBodyBytes bounds the Content-Length a request may declare. Larger
// requests are treated as malformed and the connection is closed.
func WithMaxBodyBytes(n int) Option {
	return func(e *Engine) {
		e.maxBodyBytes = n
	}
}

// WithMaxHeaderBytes bounds the start line plus header section of a request
func WithMaxHeaderBytes(n int) Option {
	return func(e *Engine) {
		e.maxHeaderBytes = n
	}
}
