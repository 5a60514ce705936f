package core

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/cndoit18/codecrafters-http-server-go/core/http"
)

// connection owns one accepted socket for its whole lifetime
type connection struct {
	engine *Engine
	conn   net.Conn
	reader *http.Reader
	state  int
	logger zerolog.Logger
}

func (e *Engine) newConnection(nc net.Conn) *connection {
	return &connection{
		engine: e,
		conn:   nc,
		reader: http.NewReader(nc, e.maxHeaderBytes, e.maxBodyBytes),
		state:  StateAwaitingRequest,
		logger: e.logger.With().Str("remote", nc.RemoteAddr().String()).Logger(),
	}
}

// serve runs request/response cycles until the connection is closed
func (c *connection) serve() {
	defer c.close()
	c.logger.Debug().Msg("connection accepted")

	for c.state != StateClosed {
		c.cycle()
	}
}

// cycle handles one request: AwaitingRequest -> Dispatching -> Responding,
// then back to AwaitingRequest or on to Closed
func (c *connection) cycle() {
	req, err := c.readRequest()
	if err != nil {
		c.logReadError(err)
		c.state = StateClosed
		return
	}

	start := time.Now()
	c.state = StateDispatching
	resp, route, err := c.dispatch(req)
	if err != nil {
		c.engine.monitor.RecordRequest(route, time.Since(start), true)
		c.logger.Error().Err(err).
			Stringer("method", req.Method).
			Str("path", req.Path).
			Msg("dropping connection")
		c.state = StateClosed
		return
	}

	c.state = StateResponding
	keepAlive := req.Header(http.HeaderConnection) != connectionClose
	err = c.respond(req, resp, keepAlive)
	c.engine.monitor.RecordRequest(route, time.Since(start), err != nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("write failed")
		c.state = StateClosed
		return
	}

	c.logger.Debug().
		Stringer("method", req.Method).
		Str("path", req.Path).
		Str("status", resp.Status).
		Bool("keep_alive", keepAlive).
		Msg("request served")

	if keepAlive {
		c.state = StateAwaitingRequest
	} else {
		c.state = StateClosed
	}
}

func (c *connection) readRequest() (*http.Request, error) {
	if d := c.engine.readTimeout; d > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
			return nil, err
		}
	}
	return c.reader.Next()
}

func (c *connection) logReadError(err error) {
	switch {
	case errors.Is(err, io.EOF):
		c.logger.Debug().Msg("peer closed connection")
	case errors.Is(err, http.ErrParse):
		c.logger.Warn().Err(err).Msg("malformed request")
	default:
		c.logger.Debug().Err(err).Msg("read failed")
	}
}

// dispatch resolves the route and runs its handler. The returned route is
// the monitor key for this cycle.
func (c *connection) dispatch(req *http.Request) (*http.Response, string, error) {
	match, ok := c.engine.router.Resolve(req.Method, req.Path)
	if !ok {
		return http.NewResponse(http.StatusNotFound), routeNotFound, nil
	}

	route := req.Method.String() + " " + match.Pattern
	req.SetParams(match.Params)

	resp, err := c.engine.middleware.Then(match.Handler).Handle(req)
	if err != nil {
		return nil, route, fmt.Errorf("%w: %s: %w", ErrHandler, route, err)
	}
	if resp == nil {
		return nil, route, fmt.Errorf("%w: %s returned no response", ErrInvalidResponse, route)
	}
	if resp.Headers == nil {
		resp.Headers = make(http.Header)
	}
	if err := resp.Validate(); err != nil {
		return nil, route, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, route, err)
	}
	return resp, route, nil
}

// respond applies content negotiation and connection headers, then writes resp
func (c *connection) respond(req *http.Request, resp *http.Response, keepAlive bool) error {
	if http.AcceptsGzip(req.Headers) {
		if err := http.Gzip(resp); err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
	}
	if !keepAlive {
		resp.Headers.Set(http.HeaderConnection, connectionClose)
	}

	if d := c.engine.writeTimeout; d > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(d)); err != nil {
			return err
		}
	}
	_, err := resp.WriteTo(c.conn)
	return err
}

func (c *connection) close() {
	c.state = StateClosed
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("close failed")
		return
	}
	c.logger.Debug().Msg("connection closed")
}
