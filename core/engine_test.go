package core

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cndoit18/codecrafters-http-server-go/core/http"
	"github.com/cndoit18/codecrafters-http-server-go/core/middleware"
)

// startEngine serves e on a loopback listener for the duration of the test
func startEngine(t *testing.T, e *Engine) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- e.Serve(ln)
	}()
	t.Cleanup(func() {
		ln.Close()
		<-done
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn net.Conn, raw string) {
	t.Helper()

	if _, err := conn.Write([]byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

type wireResponse struct {
	status  string
	headers map[string]string
	body    []byte
}

// readResponse reads one response, using Content-Length to find the end of the body
func readResponse(t *testing.T, conn net.Conn, br *bufio.Reader) wireResponse {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	resp := wireResponse{
		status:  strings.TrimPrefix(strings.TrimSuffix(line, "\r\n"), "HTTP/1.1 "),
		headers: make(map[string]string),
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		line = strings.TrimSuffix(line, "\r\n")
		if line == "" {
			break
		}
		name, value, _ := strings.Cut(line, ": ")
		resp.headers[name] = value
	}

	if cl, ok := resp.headers["Content-Length"]; ok {
		n, err := strconv.Atoi(cl)
		if err != nil {
			t.Fatalf("bad Content-Length %q", cl)
		}
		resp.body = make([]byte, n)
		if _, err := io.ReadFull(br, resp.body); err != nil {
			t.Fatalf("read body: %v", err)
		}
	}
	return resp
}

// expectClosed asserts the server closes conn without sending anything more
func expectClosed(t *testing.T, conn net.Conn, br *bufio.Reader) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	data, err := io.ReadAll(br)
	if err != nil {
		t.Fatalf("Expected EOF, got %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected no bytes before close, got %q", data)
	}
}

func echoHandler(req *http.Request) (*http.Response, error) {
	resp := http.NewResponse(http.StatusOK)
	resp.SetBody(http.MIMETextPlain, []byte(req.Param("echo")))
	return resp, nil
}

func newTestEngine(opts ...Option) *Engine {
	e := NewEngine(opts...)
	e.GET("/echo/{echo}", echoHandler)
	e.GET("/", func(*http.Request) (*http.Response, error) {
		return http.NewResponse(http.StatusOK), nil
	})
	return e
}

func TestEngineEcho(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /echo/abc HTTP/1.1\r\nHost: localhost\r\n\r\n")
	resp := readResponse(t, conn, br)

	if resp.status != "200 OK" {
		t.Errorf("Expected 200 OK, got %s", resp.status)
	}
	if resp.headers["Content-Type"] != "text/plain" || resp.headers["Content-Length"] != "3" {
		t.Errorf("Unexpected headers %v", resp.headers)
	}
	if _, ok := resp.headers["Content-Encoding"]; ok {
		t.Error("Content-Encoding should be absent without Accept-Encoding")
	}
	if string(resp.body) != "abc" {
		t.Errorf("Expected body abc, got %q", resp.body)
	}
}

func TestEngineNotFound(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /nonexistent HTTP/1.1\r\n\r\n")
	want := "HTTP/1.1 404 Not Found\r\n\r\n"
	got := make([]byte, len(want))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(br, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// Not found is not a connection error
	send(t, conn, "GET /echo/ok HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); string(resp.body) != "ok" {
		t.Errorf("Expected connection to stay usable, got %+v", resp)
	}
}

func TestEngineMethodMismatchIsNotFound(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "POST /echo/abc HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	if resp := readResponse(t, conn, br); resp.status != "404 Not Found" {
		t.Errorf("Expected 404 Not Found, got %s", resp.status)
	}
}

func TestEngineKeepAlive(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	for _, word := range []string{"one", "two", "three"} {
		send(t, conn, "GET /echo/"+word+" HTTP/1.1\r\n\r\n")
		resp := readResponse(t, conn, br)
		if string(resp.body) != word {
			t.Errorf("Expected %s, got %q", word, resp.body)
		}
		if _, ok := resp.headers["Connection"]; ok {
			t.Error("Connection header should only be set when the client asks to close")
		}
	}
}

func TestEngineHTTP10StaysOpen(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /echo/a HTTP/1.0\r\n\r\n")
	readResponse(t, conn, br)
	send(t, conn, "GET /echo/b HTTP/1.0\r\n\r\n")
	if resp := readResponse(t, conn, br); string(resp.body) != "b" {
		t.Errorf("Expected b, got %q", resp.body)
	}
}

func TestEngineConnectionClose(t *testing.T) {
	addr := startEngine(t, newTestEngine())

	tests := []struct {
		name   string
		raw    string
		status string
	}{
		{"routed", "GET /echo/bye HTTP/1.1\r\nConnection: close\r\n\r\n", "200 OK"},
		{"not found", "GET /missing HTTP/1.1\r\nConnection: close\r\n\r\n", "404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, addr)
			br := bufio.NewReader(conn)

			send(t, conn, tt.raw)
			resp := readResponse(t, conn, br)
			if resp.status != tt.status {
				t.Errorf("Expected %s, got %s", tt.status, resp.status)
			}
			if resp.headers["Connection"] != "close" {
				t.Errorf("Expected Connection: close, got %v", resp.headers)
			}
			expectClosed(t, conn, br)
		})
	}
}

func TestEngineConnectionCloseIsCaseSensitive(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /echo/a HTTP/1.1\r\nConnection: Close\r\n\r\n")
	if resp := readResponse(t, conn, br); resp.headers["Connection"] != "" {
		t.Errorf("Only an exact \"close\" should be honored, got %v", resp.headers)
	}
	send(t, conn, "GET /echo/b HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); string(resp.body) != "b" {
		t.Errorf("Expected b, got %q", resp.body)
	}
}

func TestEngineMalformedStartLine(t *testing.T) {
	addr := startEngine(t, newTestEngine())

	for _, raw := range []string{"BAD\r\n\r\n", "DELETE / HTTP/1.1\r\n\r\n", "GET / HTTP/9\r\n\r\n"} {
		conn := dial(t, addr)
		br := bufio.NewReader(conn)

		send(t, conn, raw)
		expectClosed(t, conn, br)
	}
}

func TestEngineHandlerErrorDropsConnection(t *testing.T) {
	e := newTestEngine()
	e.GET("/fail", func(*http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})
	e.GET("/nil", func(*http.Request) (*http.Response, error) {
		return nil, nil
	})
	e.GET("/bad-header", func(*http.Request) (*http.Response, error) {
		resp := http.NewResponse(http.StatusOK)
		resp.Headers.Set("Bad Header", "x")
		return resp, nil
	})
	addr := startEngine(t, e)

	for _, path := range []string{"/fail", "/nil", "/bad-header"} {
		conn := dial(t, addr)
		br := bufio.NewReader(conn)

		send(t, conn, "GET "+path+" HTTP/1.1\r\n\r\n")
		expectClosed(t, conn, br)
	}

	stats := e.Stats()
	if stats.TotalErrors != 3 {
		t.Errorf("Expected 3 recorded errors, got %d", stats.TotalErrors)
	}
}

func TestEngineMiddleware(t *testing.T) {
	e := newTestEngine()
	e.Use(middleware.Recovery(), func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Handle(req)
			if resp != nil {
				resp.Headers.Set("X-Wrapped", "1")
			}
			return resp, err
		})
	})
	e.GET("/panic", func(*http.Request) (*http.Response, error) {
		panic("boom")
	})
	addr := startEngine(t, e)

	conn := dial(t, addr)
	br := bufio.NewReader(conn)
	send(t, conn, "GET /echo/x HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); resp.headers["X-Wrapped"] != "1" {
		t.Errorf("Expected routed response to pass through middleware, got %v", resp.headers)
	}
	send(t, conn, "GET /missing HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); len(resp.headers) != 0 {
		t.Errorf("Not found should bypass middleware, got %v", resp.headers)
	}

	// A recovered panic is a handler error: the connection drops, the server lives on
	panicked := dial(t, addr)
	send(t, panicked, "GET /panic HTTP/1.1\r\n\r\n")
	expectClosed(t, panicked, bufio.NewReader(panicked))

	send(t, conn, "GET /echo/alive HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); string(resp.body) != "alive" {
		t.Errorf("Expected alive, got %q", resp.body)
	}
}

func TestEngineGzip(t *testing.T) {
	addr := startEngine(t, newTestEngine())
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /echo/abc HTTP/1.1\r\nAccept-Encoding: invalid-1, gzip, invalid-2\r\n\r\n")
	resp := readResponse(t, conn, br)

	if resp.headers["Content-Encoding"] != "gzip" {
		t.Fatalf("Expected Content-Encoding gzip, got %v", resp.headers)
	}
	if resp.headers["Content-Length"] != strconv.Itoa(len(resp.body)) {
		t.Errorf("Content-Length %s does not match body length %d", resp.headers["Content-Length"], len(resp.body))
	}
	zr, err := gzip.NewReader(bytes.NewReader(resp.body))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if string(plain) != "abc" {
		t.Errorf("Expected abc, got %q", plain)
	}
}

func TestEngineGzipSkipsEmptyAndEncodedBodies(t *testing.T) {
	e := newTestEngine()
	e.GET("/pre-encoded", func(*http.Request) (*http.Response, error) {
		resp := http.NewResponse(http.StatusOK)
		resp.SetBody("application/octet-stream", []byte("raw"))
		resp.Headers.Set(http.HeaderContentEncoding, "identity")
		return resp, nil
	})
	e.GET("/empty", func(*http.Request) (*http.Response, error) {
		resp := http.NewResponse(http.StatusOK)
		resp.SetBody(http.MIMETextPlain, []byte(""))
		return resp, nil
	})
	addr := startEngine(t, e)
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET / HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	if resp := readResponse(t, conn, br); len(resp.headers) != 0 {
		t.Errorf("Bodiless response should not be encoded, got %v", resp.headers)
	}

	send(t, conn, "GET /empty HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	if resp := readResponse(t, conn, br); resp.headers["Content-Encoding"] != "" || resp.headers["Content-Length"] != "0" {
		t.Errorf("Empty body should not be encoded, got %v", resp.headers)
	}

	send(t, conn, "GET /pre-encoded HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	resp := readResponse(t, conn, br)
	if resp.headers["Content-Encoding"] != "identity" || string(resp.body) != "raw" {
		t.Errorf("Handler-encoded body should pass through, got %v %q", resp.headers, resp.body)
	}
}

func TestEngineBodyAcrossSegments(t *testing.T) {
	e := NewEngine()
	e.POST("/upload", func(req *http.Request) (*http.Response, error) {
		resp := http.NewResponse(http.StatusCreated)
		resp.SetBody(http.MIMETextPlain, req.Body)
		return resp, nil
	})
	addr := startEngine(t, e)
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "POST /upload HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello")
	time.Sleep(50 * time.Millisecond)
	send(t, conn, "world")

	resp := readResponse(t, conn, br)
	if resp.status != "201 Created" || string(resp.body) != "helloworld" {
		t.Errorf("Expected 201 with helloworld, got %s %q", resp.status, resp.body)
	}
}

func TestEngineBodyTooLarge(t *testing.T) {
	addr := startEngine(t, newTestEngine(WithMaxBodyBytes(4)))

	for _, length := range []string{"9223372036854775807", "1099511627776", "5"} {
		conn := dial(t, addr)
		br := bufio.NewReader(conn)

		send(t, conn, "GET / HTTP/1.1\r\nContent-Length: "+length+"\r\n\r\n")
		expectClosed(t, conn, br)
	}

	// The server keeps accepting after rejecting oversized requests
	conn := dial(t, addr)
	br := bufio.NewReader(conn)
	send(t, conn, "POST /echo/x HTTP/1.1\r\nContent-Length: 4\r\n\r\nbody")
	if resp := readResponse(t, conn, br); resp.status != "404 Not Found" {
		t.Errorf("Expected 404 Not Found, got %s", resp.status)
	}
	send(t, conn, "GET /echo/alive HTTP/1.1\r\n\r\n")
	if resp := readResponse(t, conn, br); string(resp.body) != "alive" {
		t.Errorf("Expected alive, got %q", resp.body)
	}
}

func TestEngineReadTimeout(t *testing.T) {
	addr := startEngine(t, newTestEngine(WithReadTimeout(100*time.Millisecond)))
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	expectClosed(t, conn, br)
}

func TestEngineMaxConnections(t *testing.T) {
	addr := startEngine(t, newTestEngine(WithMaxConnections(1)))

	first := dial(t, addr)
	firstBR := bufio.NewReader(first)
	send(t, first, "GET /echo/first HTTP/1.1\r\n\r\n")
	readResponse(t, first, firstBR)

	second := dial(t, addr)
	send(t, second, "GET /echo/second HTTP/1.1\r\n\r\n")

	// Not accepted while the first connection is open
	second.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 1)
	if _, err := second.Read(buf); err == nil {
		t.Fatal("Second connection should wait for a free slot")
	}

	first.Close()
	resp := readResponse(t, second, bufio.NewReader(second))
	if string(resp.body) != "second" {
		t.Errorf("Expected second, got %q", resp.body)
	}
}

func TestEngineHandleAfterServePanics(t *testing.T) {
	e := newTestEngine()
	startEngine(t, e)

	// Serve freezes the routes before accepting
	deadline := time.Now().Add(2 * time.Second)
	for !e.router.Frozen() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Handle after Serve to panic")
		}
	}()
	e.GET("/late", echoHandler)
}

func TestEngineUseAfterServePanics(t *testing.T) {
	e := newTestEngine()
	e.router.Freeze()

	defer func() {
		if recover() == nil {
			t.Error("Expected Use after Serve to panic")
		}
	}()
	e.Use(middleware.Recovery())
}

func TestEngineServeReturnsAcceptError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- newTestEngine().Serve(ln)
	}()
	ln.Close()

	select {
	case err := <-done:
		if !errors.Is(err, net.ErrClosed) {
			t.Errorf("Expected net.ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the listener closed")
	}
}

func TestEngineStats(t *testing.T) {
	e := newTestEngine()
	addr := startEngine(t, e)
	conn := dial(t, addr)
	br := bufio.NewReader(conn)

	send(t, conn, "GET /echo/a HTTP/1.1\r\n\r\n")
	readResponse(t, conn, br)
	send(t, conn, "GET /missing HTTP/1.1\r\nConnection: close\r\n\r\n")
	readResponse(t, conn, br)
	expectClosed(t, conn, br)

	stats := e.Stats()
	if stats.TotalRequests != 2 {
		t.Errorf("Expected 2 requests, got %d", stats.TotalRequests)
	}
	routes := map[string]uint64{}
	for _, r := range stats.Routes {
		routes[r.Route] = r.Count
	}
	if routes["GET /echo/{echo}"] != 1 || routes[routeNotFound] != 1 {
		t.Errorf("Unexpected route counts %v", routes)
	}
}

func BenchmarkEngineEcho(b *testing.B) {
	e := newTestEngine()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go e.Serve(ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		b.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := []byte("GET /echo/bench HTTP/1.1\r\n\r\n")
	buf := make([]byte, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Write(req); err != nil {
			b.Fatal(err)
		}
		if _, err := conn.Read(buf); err != nil {
			b.Fatal(err)
		}
	}
}
