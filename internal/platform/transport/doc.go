// Package transport sends JSON POST requests with an optional opaque
// Authorization header and returns the raw response body. Any response with
// a status code of 400 or above is reported as a *StatusError.
package transport
