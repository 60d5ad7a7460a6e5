package model

import (
	"errors"
	"fmt"
)

// ErrDecode marks a response body that could not be decoded into listings.
var ErrDecode = errors.New("decode listings")

// HTTPError wraps a non-200 status code from an outbound call.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
