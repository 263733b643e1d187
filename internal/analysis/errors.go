package analysis

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when the backend reply is not valid JSON
// of the expected shape.
var ErrMalformedResponse = errors.New("malformed analysis response")

// TransportError is a non-2xx HTTP status from the backend.
type TransportError struct {
	Endpoint   Endpoint
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: HTTP error! status: %d", e.Endpoint, e.StatusCode)
}

// RemoteError is a well-formed reply carrying an "error" field.
type RemoteError struct {
	Endpoint Endpoint
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}
