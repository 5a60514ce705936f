package http

// HTTP header constants
const (
	HeaderContentType     = "Content-Type"
	HeaderContentLength   = "Content-Length"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderUserAgent       = "User-Agent"
	HeaderConnection      = "Connection"
)

// Content types used by the built-in routes
const (
	MIMETextPlain   = "text/plain"
	MIMEOctetStream = "application/octet-stream"
)
