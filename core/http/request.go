package http

// Method is a recognized request method
type Method uint8

const (
	MethodGet Method = iota + 1
	MethodPost
)

var methodNames = map[Method]string{
	MethodGet:  "GET",
	MethodPost: "POST",
}

var methodsByName = map[string]Method{
	"GET":  MethodGet,
	"POST": MethodPost,
}

// ParseMethod looks up a method token. Matching is case-sensitive.
func ParseMethod(s string) (Method, bool) {
	m, ok := methodsByName[s]
	return m, ok
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// Version is the protocol version from the start line.
// Only HTTP/1.0 and HTTP/1.1 semantics are implemented; the others are accepted and echoed.
type Version uint8

const (
	HTTP10 Version = iota + 1
	HTTP11
	HTTP2
	HTTP3
)

var versionNames = map[Version]string{
	HTTP10: "HTTP/1.0",
	HTTP11: "HTTP/1.1",
	HTTP2:  "HTTP/2",
	HTTP3:  "HTTP/3",
}

var versionsByName = map[string]Version{
	"HTTP/1.0": HTTP10,
	"HTTP/1.1": HTTP11,
	"HTTP/2":   HTTP2,
	"HTTP/3":   HTTP3,
}

// ParseVersion looks up a protocol token such as "HTTP/1.1".
func ParseVersion(s string) (Version, bool) {
	v, ok := versionsByName[s]
	return v, ok
}

func (v Version) String() string {
	if s, ok := versionNames[v]; ok {
		return s
	}
	return "HTTP/1.1"
}

// Header maps a field name to its value. Names are case-sensitive and a later
// Set for the same name replaces the earlier value.
type Header map[string]string

// Get returns the value for key, or "" when absent
func (h Header) Get(key string) string {
	return h[key]
}

// Lookup returns the value for key and whether it was present
func (h Header) Lookup(key string) (string, bool) {
	v, ok := h[key]
	return v, ok
}

// Set sets a header value
func (h Header) Set(key, value string) {
	h[key] = value
}

// Del removes a header
func (h Header) Del(key string) {
	delete(h, key)
}

// Request is a parsed HTTP request
type Request struct {
	Method   Method
	Path     string
	RawQuery string
	Version  Version
	Headers  Header

	// Body is nil when nothing followed the header section
	Body []byte

	// Params holds the values captured by the matched route pattern.
	// It is empty until the request has been routed.
	Params map[string]string
}

// Header gets a request header
func (r *Request) Header(key string) string {
	return r.Headers.Get(key)
}

// Param gets a path parameter
func (r *Request) Param(key string) string {
	return r.Params[key]
}

// SetParams replaces the request's path parameters with params
func (r *Request) SetParams(params map[string]string) {
	r.Params = make(map[string]string, len(params))
	for k, v := range params {
		r.Params[k] = v
	}
}
