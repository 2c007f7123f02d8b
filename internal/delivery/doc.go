// Package delivery posts the computed outcome to the webhook with bounded
// retries.
//
// A Driver walks an explicit state machine:
//
//	Pending -> Attempting -> Delivered
//	                      -> Attempting (after a fixed backoff)
//	                      -> Exhausted
//
// Delivered and Exhausted are terminal. A driver never issues more calls than
// its attempt cap and never calls the transport again once terminal.
package delivery
