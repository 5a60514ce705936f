package http

import (
	"bytes"
	"compress/gzip"
	"strconv"
	"strings"
	"sync"
)

const encodingGzip = "gzip"

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// AcceptsGzip reports whether Accept-Encoding lists the exact token "gzip".
// Quality values are not interpreted, so "gzip;q=0" does not count.
func AcceptsGzip(h Header) bool {
	v, ok := h.Lookup(HeaderAcceptEncoding)
	if !ok {
		return false
	}
	for _, token := range strings.Split(v, ",") {
		if strings.TrimSpace(token) == encodingGzip {
			return true
		}
	}
	return false
}

// Compressible reports whether Gzip would change r: it has a non-empty body
// that carries no Content-Encoding yet.
func Compressible(r *Response) bool {
	if len(r.Body) == 0 {
		return false
	}
	_, encoded := r.Headers.Lookup(HeaderContentEncoding)
	return !encoded
}

// Gzip replaces the body of r with its gzip-compressed form, sets
// Content-Encoding and recomputes Content-Length. Responses that are not
// Compressible are left untouched.
func Gzip(r *Response) error {
	if !Compressible(r) {
		return nil
	}

	var buf bytes.Buffer
	zw := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(r.Body); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if r.Headers == nil {
		r.Headers = make(Header)
	}
	r.Body = buf.Bytes()
	r.Headers.Set(HeaderContentEncoding, encodingGzip)
	r.Headers.Set(HeaderContentLength, strconv.Itoa(len(r.Body)))
	return nil
}
