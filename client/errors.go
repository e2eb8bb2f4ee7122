package client

import "fmt"

// TransportError means that no HTTP response was received: DNS failure, refused connection,
// timeout, or cancellation.
type TransportError struct {
	Method Method
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned only for requests with FailOnStatusCode set, when the status was not
// in the 2xx range. The response is still returned along with it.
type StatusError struct {
	Method     Method
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned unexpected HTTP status %d", e.Method, e.URL, e.StatusCode)
}
