package http

// Handler produces the response for a routed request. Path parameters are
// already present in req.Params when Handle is called.
//
// A returned error is fatal to the connection: nothing is written and the
// socket is closed. Handlers set their own Content-Type and Content-Length;
// the engine may replace the body and Content-Length when it compresses.
type Handler interface {
	Handle(req *Request) (*Response, error)
}

// HandlerFunc adapts an ordinary function to Handler
type HandlerFunc func(req *Request) (*Response, error)

// Handle calls f(req)
func (f HandlerFunc) Handle(req *Request) (*Response, error) {
	return f(req)
}
