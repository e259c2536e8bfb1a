package memories

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates no usable bearer token: either none was ever
// set, or the remote API rejected the one we had. Callers should send the
// user back to the PIN gate.
var ErrUnauthenticated = errors.New("not authenticated")

// ServerError is a 5xx response from the remote memories API.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("memories api server error: status %d", e.Status)
}

// NetworkError wraps a connection-level failure (DNS, refused connection,
// timeout) where no HTTP response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("memories api unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is a field-level rejection of a create-memory submission,
// either raised client-side before any network call or decoded from the
// remote API's structured {field, error} body.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// HTTPError is any other non-2xx response that fits none of the categories above.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("memories api error: status %d: %s", e.Status, e.Body)
}
