// Package registration obtains the task payload from the remote service.
//
// The response is parsed once into a validated Response: webhook and access
// token are mandatory, while a missing user list degrades to an empty one and
// is flagged so the caller can report it.
package registration
