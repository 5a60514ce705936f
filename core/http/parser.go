package http

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse is wrapped by every error that makes a message unreadable
	ErrParse = errors.New("invalid HTTP request")

	ErrMalformedStartLine = fmt.Errorf("%w: malformed start line", ErrParse)
	ErrUnknownMethod      = fmt.Errorf("%w: unknown method", ErrParse)
	ErrUnknownVersion     = fmt.Errorf("%w: unknown version", ErrParse)
	ErrHeaderTooLarge     = fmt.Errorf("%w: header section too large", ErrParse)
	ErrBodyTooLarge       = fmt.Errorf("%w: declared body too large", ErrParse)
)

var (
	crlf           = []byte("\r\n")
	headerTerminal = []byte("\r\n\r\n")
)

// ParseRequest parses one complete message. Everything after the first empty
// line is taken as the body verbatim; Content-Length is not consulted here.
func ParseRequest(data []byte) (*Request, error) {
	head, body := data, []byte(nil)
	if idx := bytes.Index(data, headerTerminal); idx != -1 {
		head = data[:idx]
		body = data[idx+len(headerTerminal):]
	}

	// Start line
	line, rest, _ := bytes.Cut(head, crlf)
	req, err := parseStartLine(string(line))
	if err != nil {
		return nil, err
	}

	req.Headers = make(Header)
	parseHeaders(req.Headers, rest)

	if len(body) > 0 {
		req.Body = append([]byte(nil), body...)
	}
	return req, nil
}

func parseStartLine(line string) (*Request, error) {
	tokens := strings.Split(line, " ")
	if len(tokens) != 3 || tokens[1] == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStartLine, line)
	}

	method, ok := ParseMethod(tokens[0])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, tokens[0])
	}
	version, ok := ParseVersion(tokens[2])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, tokens[2])
	}

	req := &Request{
		Method:  method,
		Version: version,
		Params:  map[string]string{},
	}
	req.Path, req.RawQuery = splitTarget(tokens[1])
	return req, nil
}

// splitTarget strips the query and fragment off a request target
func splitTarget(target string) (path, query string) {
	if i := strings.IndexByte(target, '#'); i != -1 {
		target = target[:i]
	}
	path, query, _ = strings.Cut(target, "?")
	return path, query
}

// parseHeaders reads "name: value" lines. The first line that has no ": "
// separator ends the header section; anything after it is ignored.
func parseHeaders(h Header, data []byte) {
	for len(data) > 0 {
		var line []byte
		line, data, _ = bytes.Cut(data, crlf)

		name, value, ok := strings.Cut(string(line), ": ")
		if !ok {
			return
		}
		h.Set(name, value)
	}
}
