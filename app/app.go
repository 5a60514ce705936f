package app

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cndoit18/codecrafters-http-server-go/config"
	"github.com/cndoit18/codecrafters-http-server-go/core"
	"github.com/cndoit18/codecrafters-http-server-go/core/middleware"
	"github.com/cndoit18/codecrafters-http-server-go/core/pools"
)

// App is the application instance: a configured engine with the built-in routes
type App struct {
	cfg    *config.Config
	engine *core.Engine
	logger zerolog.Logger
}

// New creates an application instance logging to stderr
func New(cfg *config.Config) *App {
	return NewWithLogger(cfg, NewLogger(cfg, os.Stderr))
}

// NewWithLogger creates an application instance with a caller-supplied logger
func NewWithLogger(cfg *config.Config, logger zerolog.Logger) *App {
	engine := core.NewEngine(
		core.WithLogger(logger),
		core.WithReadTimeout(cfg.ReadTimeout),
		core.WithWriteTimeout(cfg.WriteTimeout),
		core.WithMaxConnections(cfg.MaxConnections),
		core.WithMaxHeaderBytes(cfg.MaxHeaderBytes),
		core.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	engine.Use(middleware.Recovery(), middleware.AccessLog(logger))
	Register(engine, cfg.Directory)

	return &App{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
}

// NewLogger builds the process logger: human-readable in development, JSON otherwise
func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Engine returns the underlying engine
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Run binds the configured address and serves until SIGINT/SIGTERM
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := core.Listen(ctx, a.cfg.Addr())
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve runs the engine on ln until ctx is done or the listener fails
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("directory", a.cfg.Directory).
		Str("env", a.cfg.Env).
		Msg("starting server")

	done := make(chan error, 1)
	go func() {
		done <- a.engine.Serve(ln)
	}()

	select {
	case err := <-done:
		a.logger.Error().Err(err).Msg("listener failed")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
		ln.Close()
		if err := <-done; err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		a.logStats()
		return nil
	}
}

func (a *App) logStats() {
	stats := a.engine.Stats()
	a.logger.Info().
		Uint64("requests", stats.TotalRequests).
		Uint64("errors", stats.TotalErrors).
		Msg("server stopped")

	buffers := pools.GetBufferStats()
	a.logger.Debug().
		Uint64("small", buffers.SmallHits).
		Uint64("medium", buffers.MediumHits).
		Uint64("large", buffers.LargeHits).
		Uint64("oversized", buffers.Oversized).
		Msg("response buffer stats")

	for _, r := range stats.Routes {
		a.logger.Debug().
			Str("route", r.Route).
			Uint64("count", r.Count).
			Uint64("errors", r.Errors).
			Dur("avg", r.Avg).
			Dur("max", r.Max).
			Msg("route stats")
	}
}
