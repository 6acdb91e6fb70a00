package proxyupload

import "errors"

// Validation errors returned by Policy.Check and Service.Authorize
var (
	// ErrTypeNotAllowed indicates the declared content type is not on the allow-list
	ErrTypeNotAllowed = errors.New("content type not allowed")

	// ErrTooLarge indicates the declared size exceeds the byte ceiling
	ErrTooLarge = errors.New("file too large")

	// ErrInvalidSize indicates the declared size is malformed or negative
	ErrInvalidSize = errors.New("invalid size")
)

// ErrNoPresigner is returned by New when no Presigner was configured
var ErrNoPresigner = errors.New("proxyupload: presigner is required")

// IsValidationError reports whether err was caused by a request that the
// upload policy rejects. Such errors map to a client error, not a server one.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTypeNotAllowed) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrInvalidSize)
}
