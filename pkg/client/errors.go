package client

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the single failure kind for calls to the bridge API.
// Transport errors and non-success responses both match it via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes a failed call to the bridge API
type RequestError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int    // zero when the request never got a response
	Body       string // response body of a non-success response
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s failed: API returned status code %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s failed: API returned status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports every RequestError as ErrRequestFailed
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
