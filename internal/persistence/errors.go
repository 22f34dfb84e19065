package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrEmptyKey is returned when a store operation receives a blank key.
	ErrEmptyKey = errors.New("persistence: empty key")
	// ErrMalformedValue is returned when a stored value cannot be decoded.
	ErrMalformedValue = errors.New("persistence: malformed value")
)
