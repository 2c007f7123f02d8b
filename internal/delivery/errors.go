package delivery

import "errors"

// Error definitions for the delivery package.
var (
	// ErrDeliveryExhausted is returned when every allowed attempt failed.
	// It wraps the error of the final attempt.
	ErrDeliveryExhausted = errors.New("delivery attempts exhausted")

	// ErrDriverFinished is returned when Deliver is called on a driver that
	// already reached a terminal state.
	ErrDriverFinished = errors.New("delivery driver already finished")
)
