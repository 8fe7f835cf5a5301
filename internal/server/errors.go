package server

import "errors"

var (
	// ErrConnectionLimitReached describes a connection refused because the
	// configured maximum is already in use. The Listener does not return
	// it: it closes such a connection and logs a warning.
	ErrConnectionLimitReached = errors.New("server: connection limit reached")
)
