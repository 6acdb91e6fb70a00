package proxysig

import "errors"

// Signature validation errors
var (
	// ErrNoSecretKey is returned when no shared secret is configured; every request is rejected
	ErrNoSecretKey = errors.New("proxysig: no secret key configured")

	// ErrMissingField is returned when one of the signed query parameters is absent or empty
	ErrMissingField = errors.New("proxysig: missing signed parameter")

	// ErrInvalidTimestamp is returned when freshness is enforced and the timestamp is not unix seconds
	ErrInvalidTimestamp = errors.New("proxysig: invalid timestamp parameter")

	// ErrExpired is returned when the timestamp falls outside the freshness window
	ErrExpired = errors.New("proxysig: timestamp outside allowed window")

	// ErrInvalidSignature is returned when the signature does not match
	ErrInvalidSignature = errors.New("proxysig: invalid signature")
)

// IsAuthError returns true if the error is a signature validation error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNoSecretKey) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidSignature)
}
