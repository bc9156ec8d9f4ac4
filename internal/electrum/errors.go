package electrum

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a request's 12-second deadline elapses
	// before a matching response arrives.
	ErrTimeout = errors.New("electrum: request timed out")
	// ErrConnectionFailed is returned for dial failures and connections
	// that drop while a request is outstanding.
	ErrConnectionFailed = errors.New("electrum: connection failed")
	// ErrNotConnected is returned by Call when no connection is currently
	// established.
	ErrNotConnected = errors.New("electrum: not connected")
	// ErrInvalidResponse is returned when a line from the server cannot be
	// parsed as a JSON-RPC response or notification.
	ErrInvalidResponse = errors.New("electrum: invalid response")
)

// ServerError wraps a JSON-RPC error object returned by the remote server.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("electrum: server error %d: %s", e.Code, e.Message)
}
