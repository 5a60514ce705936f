package core

import "errors"

// Connection states
const (
	StateAwaitingRequest = iota
	StateDispatching
	StateResponding
	StateClosed
)

// Error definitions
var (
	// ErrHandler wraps errors returned by route handlers
	ErrHandler = errors.New("handler failed")

	// ErrInvalidResponse is returned when a handler builds a response that cannot be serialized
	ErrInvalidResponse = errors.New("invalid response")
)

const (
	connectionClose = "close"

	// routeNotFound is the monitor key for requests that matched no route
	routeNotFound = "404"
)
