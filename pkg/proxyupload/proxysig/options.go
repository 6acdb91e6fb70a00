package proxysig

import "time"

// Option is a functional option for configuring a Verifier
type Option func(*Verifier)

// WithSecretKey sets the shared secret used for HMAC signing
func WithSecretKey(key string) Option {
	return func(v *Verifier) {
		v.secretKey = []byte(key)
	}
}

// WithMaxAge rejects requests whose timestamp is more than d away from now.
// Zero disables the check, which is the default.
func WithMaxAge(d time.Duration) Option {
	return func(v *Verifier) {
		v.maxAge = d
	}
}

// WithClock overrides time.Now for freshness checks
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithCustomPayloadFunc allows customizing the signed message
// Default format is: shop + pathPrefix + timestamp
func WithCustomPayloadFunc(fn func(p Params) string) Option {
	return func(v *Verifier) {
		v.payloadFunc = fn
	}
}
