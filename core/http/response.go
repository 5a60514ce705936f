package http

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/cndoit18/codecrafters-http-server-go/core/pools"
)

// Common status lines
const (
	StatusOK       = "200 OK"
	StatusCreated  = "201 Created"
	StatusNotFound = "404 Not Found"
)

// Response is an HTTP response under construction.
//
// Content-Length, when set, must equal len(Body). SetBody keeps the two in step;
// code that assigns Body directly is responsible for the header.
type Response struct {
	Version Version
	Status  string
	Headers Header
	Body    []byte
}

// NewResponse creates an HTTP/1.1 response with the given status line text
func NewResponse(status string) *Response {
	return &Response{
		Version: HTTP11,
		Status:  status,
		Headers: make(Header),
	}
}

// SetBody sets the body along with its Content-Type and Content-Length
func (r *Response) SetBody(contentType string, body []byte) {
	if r.Headers == nil {
		r.Headers = make(Header)
	}
	r.Headers.Set(HeaderContentType, contentType)
	r.Headers.Set(HeaderContentLength, strconv.Itoa(len(body)))
	r.Body = body
}

// Validate reports header fields that cannot be put on the wire
func (r *Response) Validate() error {
	for name, value := range r.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("invalid value for header %q", name)
		}
	}
	return nil
}

// AppendTo appends the wire form of r to b. Header order follows map iteration.
func (r *Response) AppendTo(b []byte) []byte {
	b = append(b, r.Version.String()...)
	b = append(b, ' ')
	b = append(b, r.Status...)
	b = append(b, crlf...)
	for name, value := range r.Headers {
		b = append(b, name...)
		b = append(b, ": "...)
		b = append(b, value...)
		b = append(b, crlf...)
	}
	b = append(b, crlf...)
	return append(b, r.Body...)
}

// Bytes returns the wire form of r
func (r *Response) Bytes() []byte {
	return r.AppendTo(nil)
}

// WriteTo serializes r into a pooled buffer and writes it with a single call
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf := pools.AcquireBuffer(r.estimatedSize())
	defer pools.ReleaseBuffer(buf)

	*buf = r.AppendTo((*buf)[:0])
	n, err := w.Write(*buf)
	return int64(n), err
}

func (r *Response) estimatedSize() int {
	size := len(r.Status) + 16 + len(r.Body)
	for name, value := range r.Headers {
		size += len(name) + len(value) + 4
	}
	return size
}
