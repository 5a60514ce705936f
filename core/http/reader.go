package http

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"github.com/cndoit18/codecrafters-http-server-go/core/pools"
)

const (
	// ReadChunkSize is how much is requested from the socket per read call
	ReadChunkSize = 2048

	// DefaultMaxHeaderBytes bounds the start line plus header section
	DefaultMaxHeaderBytes = 1 << 20

	// DefaultMaxBodyBytes bounds the Content-Length a request may declare
	DefaultMaxBodyBytes = 32 << 20
)

// Reader frames requests on a byte stream.
//
// A message ends at the header terminator plus Content-Length body bytes when
// the request carries a valid Content-Length. Without one, every byte buffered
// once the header terminator has arrived belongs to the message. A declared
// length above the body limit fails with ErrBodyTooLarge before any body byte
// is buffered.
type Reader struct {
	r              io.Reader
	buf            []byte
	maxHeaderBytes int
	maxBodyBytes   int
}

// NewReader creates a Reader on r. Limits <= 0 select DefaultMaxHeaderBytes
// and DefaultMaxBodyBytes.
func NewReader(r io.Reader, maxHeaderBytes, maxBodyBytes int) *Reader {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Reader{r: r, maxHeaderBytes: maxHeaderBytes, maxBodyBytes: maxBodyBytes}
}

// Buffered returns the number of bytes read from the stream but not yet consumed
func (r *Reader) Buffered() int {
	return len(r.buf)
}

// Next blocks until a message is available and parses it.
// It returns io.EOF when the stream ends before any byte of a new message.
func (r *Reader) Next() (*Request, error) {
	// Wait for the header terminator
	headerEnd := bytes.Index(r.buf, headerTerminal)
	for headerEnd == -1 {
		if len(r.buf) > r.maxHeaderBytes {
			r.buf = nil
			return nil, ErrHeaderTooLarge
		}
		if err := r.fill(); err != nil {
			if err == io.EOF && len(r.buf) > 0 {
				// Peer finished sending; parse what arrived
				return r.consume(len(r.buf))
			}
			return nil, err
		}
		headerEnd = bytes.Index(r.buf, headerTerminal)
	}

	bodyStart := headerEnd + len(headerTerminal)
	length, ok := contentLength(r.buf[:headerEnd])
	if !ok {
		return r.consume(len(r.buf))
	}
	if length > r.maxBodyBytes || length > math.MaxInt-bodyStart {
		r.buf = nil
		return nil, ErrBodyTooLarge
	}

	for len(r.buf) < bodyStart+length {
		if err := r.fill(); err != nil {
			if err == io.EOF {
				// Short body: hand over what we have
				return r.consume(len(r.buf))
			}
			return nil, err
		}
	}
	return r.consume(bodyStart + length)
}

func (r *Reader) consume(n int) (*Request, error) {
	msg := r.buf[:n]
	if n == len(r.buf) {
		r.buf = nil
	} else {
		r.buf = append([]byte(nil), r.buf[n:]...)
	}
	return ParseRequest(msg)
}

// fill performs one read, retrying reads that return no data
func (r *Reader) fill() error {
	chunk := pools.GetBytes(ReadChunkSize)
	defer pools.PutBytes(chunk)

	for {
		n, err := r.r.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// contentLength scans a raw header section for a usable Content-Length.
// It follows the same splitting rules as parseHeaders.
func contentLength(head []byte) (int, bool) {
	_, rest, _ := bytes.Cut(head, crlf)
	h := make(Header)
	parseHeaders(h, rest)

	v, ok := h.Lookup("Content-Length")
	if !ok {
		return 0, false
	}
	// Digits only: no sign, no whitespace
	n, err := strconv.ParseUint(v, 10, strconv.IntSize-1)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
