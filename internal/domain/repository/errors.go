package repository

import "errors"

var (
	// ErrProviderUnavailable is returned when an upstream API answers with a failure status
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedResponse is returned when an upstream API answers with an unexpected shape
	ErrMalformedResponse = errors.New("malformed provider response")
)
