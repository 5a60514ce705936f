/*
Package httpserver is a small HTTP/1.1 server built directly on TCP sockets.

It parses requests from the byte stream itself, routes them through a
per-method path trie with {name} parameters, keeps connections alive across
requests and gzip-compresses response bodies when the client accepts it.

Features

  - HTTP/1.1 request framing with Content-Length bodies
  - Per-method routing with literal segments preferred over {name} segments
  - Keep-alive with "Connection: close" honored per request
  - Engine-applied gzip content encoding
  - One goroutine per connection, optional connection cap and timeouts
  - Structured logging with zerolog and per-route request statistics

Quick Start

	package main

	import (
	    "github.com/cndoit18/codecrafters-http-server-go/core"
	    "github.com/cndoit18/codecrafters-http-server-go/core/http"
	)

	func main() {
	    engine := core.NewEngine()
	    engine.GET("/hello/{name}", func(req *http.Request) (*http.Response, error) {
	        resp := http.NewResponse(http.StatusOK)
	        resp.SetBody(http.MIMETextPlain, []byte("Hello, "+req.Param("name")))
	        return resp, nil
	    })
	    engine.Run("127.0.0.1:4221")
	}

The cmd/server binary serves the built-in routes from package app:

	server --directory /tmp/files --port 4221

Modules

  - app: built-in routes and application lifecycle
  - config: flag and HTTP_SERVER_* environment configuration
  - core: engine, listener and per-connection state machine
  - core/http: request parsing, stream framing, response serialization, gzip
  - core/router: path-parameter routing trie
  - core/middleware: handler wrapping (panic recovery, access log)
  - core/pools: read chunk and response buffer pools
  - core/observability: per-route request statistics
*/
package httpserver
