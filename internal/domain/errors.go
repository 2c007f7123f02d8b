package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrMalformedRecord is returned when a raw user entry is not a JSON object.
	ErrMalformedRecord = errors.New("malformed user record")

	// ErrMissingID is returned when a user entry carries no id.
	ErrMissingID = errors.New("user record missing id")

	// ErrInvalidID is returned when an id cannot be coerced to an integer.
	ErrInvalidID = errors.New("invalid user id")

	// ErrMalformedFollows is returned when a follows field is not a list of ids.
	ErrMalformedFollows = errors.New("malformed follows list")

	// ErrDuplicateID is reported when two records share an id.
	ErrDuplicateID = errors.New("duplicate user id")

	// ErrSelfPair is returned when a mutual pair would pair an id with itself.
	ErrSelfPair = errors.New("mutual pair requires two distinct ids")

	// ErrInvalidPair is returned when a serialized pair is not two ascending ids.
	ErrInvalidPair = errors.New("invalid mutual pair")
)
