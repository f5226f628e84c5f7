package model

import (
	"fmt"
	"time"
)

// HTTPError carries an HTTP status code so retry logic can classify a
// transport failure without string matching.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from the Retry-After header, zero if absent
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
