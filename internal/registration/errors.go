package registration

import "errors"

// Error definitions for the registration package.
var (
	// ErrRegistrationFailed is returned when the registration call itself fails.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrInvalidResponse is returned when the response body cannot be parsed
	// or lacks the fields needed to continue.
	ErrInvalidResponse = errors.New("invalid registration response")
)
