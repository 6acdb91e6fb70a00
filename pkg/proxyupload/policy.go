package proxyupload

import (
	"fmt"
	"sort"
)

// Policy is the static allow-list and byte ceiling applied to every upload.
type Policy struct {
	allowed  map[string]struct{}
	maxBytes int64
}

// NewPolicy builds a Policy. A non-positive maxBytes falls back to
// DefaultMaxBytes and an empty allow-list to DefaultAllowedTypes.
func NewPolicy(allowedTypes []string, maxBytes int64) Policy {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, ct := range allowedTypes {
		if ct == "" {
			continue
		}
		allowed[ct] = struct{}{}
	}

	return Policy{allowed: allowed, maxBytes: maxBytes}
}

// DefaultPolicy returns the policy built from DefaultAllowedTypes and DefaultMaxBytes.
func DefaultPolicy() Policy {
	return NewPolicy(nil, 0)
}

// Allows reports whether contentType is on the allow-list. Matching is exact.
func (p Policy) Allows(contentType string) bool {
	_, ok := p.allowed[contentType]
	return ok
}

// MaxBytes returns the byte ceiling. A declared size equal to it is accepted.
func (p Policy) MaxBytes() int64 {
	return p.maxBytes
}

// AllowedTypes returns the allow-list in sorted order.
func (p Policy) AllowedTypes() []string {
	types := make([]string, 0, len(p.allowed))
	for ct := range p.allowed {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}

// Check validates the declared content type first, then the declared size.
func (p Policy) Check(contentType string, size int64) error {
	if !p.Allows(contentType) {
		return fmt.Errorf("%w: %q", ErrTypeNotAllowed, contentType)
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > p.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, size, p.maxBytes)
	}
	return nil
}
