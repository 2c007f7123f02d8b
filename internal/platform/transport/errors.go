package transport

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is returned when a request could not be sent or its
// response could not be read.
var ErrRequestFailed = errors.New("request failed")

// maxErrorBody caps how much of a failing response body is kept in a StatusError.
const maxErrorBody = 512

// StatusError reports a response whose status code signals failure (>= 400).
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
