package communication

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnretryable       = errors.New("unretryable api error")
	ErrQueueTimeout      = errors.New("command not confirmed in queue")
)

// TransportError reports a failure below the API envelope: the request could
// not be sent, the server answered with a non 2xx status or the body was not
// JSON.
type TransportError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error on %s (status %d): %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error on %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
