package domain

import "errors"

var (
	// ErrTokenNotFound is returned when the chain reports no owner and no token URI for a token
	ErrTokenNotFound = errors.New("token not found")

	// ErrConfiguration is returned when a component is constructed with missing or invalid dependencies
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidTokenReference is returned for a malformed contract address or token id
	ErrInvalidTokenReference = errors.New("invalid token reference")
)
