package proxysig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Query parameter names carried by a proxied request
const (
	ParamSignature  = "signature"
	ParamTimestamp  = "timestamp"
	ParamShop       = "shop"
	ParamPathPrefix = "path_prefix"
)

// Params are the signed fields of a proxied request
type Params struct {
	Signature  string
	Timestamp  string
	Shop       string
	PathPrefix string
}

// ParamsFromQuery extracts the signed fields from query values
func ParamsFromQuery(q url.Values) Params {
	return Params{
		Signature:  q.Get(ParamSignature),
		Timestamp:  q.Get(ParamTimestamp),
		Shop:       q.Get(ParamShop),
		PathPrefix: q.Get(ParamPathPrefix),
	}
}

// Verifier checks app-proxy signatures
type Verifier struct {
	secretKey   []byte
	maxAge      time.Duration
	now         func() time.Time
	payloadFunc func(p Params) string
}

// New creates a new Verifier with the given options
func New(opts ...Option) *Verifier {
	v := &Verifier{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// IsEnabled returns true if a secret key is configured
func (v *Verifier) IsEnabled() bool {
	return len(v.secretKey) > 0
}

// Sign returns the hex signature for the given fields
//
// Example:
//
//	sig := v.Sign("example.myshopify.com", "/apps/upload", "1700000000")
func (v *Verifier) Sign(shop, pathPrefix, timestamp string) string {
	p := Params{Shop: shop, PathPrefix: pathPrefix, Timestamp: timestamp}
	return hex.EncodeToString(v.mac(v.createPayload(p)))
}

// SignQuery sets the signature parameter of q from its shop, path_prefix
// and timestamp values
func (v *Verifier) SignQuery(q url.Values) error {
	if !v.IsEnabled() {
		return ErrNoSecretKey
	}
	q.Set(ParamSignature, v.Sign(q.Get(ParamShop), q.Get(ParamPathPrefix), q.Get(ParamTimestamp)))
	return nil
}

// VerifyRequest verifies the signature carried in the request's query string
func (v *Verifier) VerifyRequest(r *http.Request) error {
	return v.VerifyQuery(r.URL.Query())
}

// VerifyQuery verifies the signature carried in query values
func (v *Verifier) VerifyQuery(q url.Values) error {
	return v.Verify(ParamsFromQuery(q))
}

// Verify checks that all signed fields are present, that the timestamp is
// fresh when a max age is configured, and that the signature matches
func (v *Verifier) Verify(p Params) error {
	if !v.IsEnabled() {
		return ErrNoSecretKey
	}

	for _, f := range []struct{ name, value string }{
		{ParamSignature, p.Signature},
		{ParamTimestamp, p.Timestamp},
		{ParamShop, p.Shop},
		{ParamPathPrefix, p.PathPrefix},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	if v.maxAge > 0 {
		if err := v.checkFreshness(p.Timestamp); err != nil {
			return err
		}
	}

	// A value that is not hex, or decodes to the wrong length, can never match.
	given, err := hex.DecodeString(p.Signature)
	if err != nil {
		return ErrInvalidSignature
	}

	expected := v.mac(v.createPayload(p))

	// Compare signatures using constant-time comparison to prevent timing attacks
	if !hmac.Equal(given, expected) {
		return ErrInvalidSignature
	}

	return nil
}

func (v *Verifier) checkFreshness(timestamp string) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.maxAge || age < -v.maxAge {
		return fmt.Errorf("%w: %s old", ErrExpired, age.Round(time.Second))
	}
	return nil
}

// createPayload creates the signed message
// Default format: shop + pathPrefix + timestamp
func (v *Verifier) createPayload(p Params) string {
	if v.payloadFunc != nil {
		return v.payloadFunc(p)
	}
	return p.Shop + p.PathPrefix + p.Timestamp
}

func (v *Verifier) mac(payload string) []byte {
	h := hmac.New(sha256.New, v.secretKey)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
