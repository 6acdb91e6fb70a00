package objectkey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// DefaultPrefix is the key prefix used when none is configured
	DefaultPrefix = "contact"

	// DefaultExtension replaces an extension that sanitizes to nothing
	DefaultExtension = "bin"

	// MaxExtensionLength bounds the sanitized extension
	MaxExtensionLength = 10

	randomBytes = 6
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for a file with the given extension
	GenerateKey(extension string) (string, error)
}

// TimestampGenerator produces keys of the form
// {prefix}/{unix millis}-{12 hex chars}.{ext}
type TimestampGenerator struct {
	Prefix string

	// Now and Rand default to time.Now and crypto/rand; tests override them.
	Now  func() time.Time
	Rand io.Reader
}

func NewTimestampGenerator(prefix string) *TimestampGenerator {
	return &TimestampGenerator{
		Prefix: prefix,
		Now:    time.Now,
		Rand:   rand.Reader,
	}
}

func (g *TimestampGenerator) GenerateKey(extension string) (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	src := rand.Reader
	if g.Rand != nil {
		src = g.Rand
	}

	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	name := fmt.Sprintf("%d-%s.%s", now().UnixMilli(), hex.EncodeToString(buf), SanitizeExtension(extension))

	prefix := sanitizePrefix(g.Prefix)
	if prefix == "" {
		return name, nil
	}
	return prefix + "/" + name, nil
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(extension string) (string, error)
}

func NewCustomFuncGenerator(fn func(extension string) (string, error)) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(extension string) (string, error) {
	return g.GenerateFunc(extension)
}

// SanitizeExtension keeps only ASCII letters, digits and dots, truncates the
// result to MaxExtensionLength bytes and falls back to DefaultExtension when
// nothing is left. Case is preserved.
func SanitizeExtension(ext string) string {
	var b strings.Builder
	for i := 0; i < len(ext) && b.Len() < MaxExtensionLength; i++ {
		c := ext[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.':
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return DefaultExtension
	}
	return b.String()
}

func sanitizePrefix(prefix string) string {
	replacer := strings.NewReplacer(
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.Trim(replacer.Replace(prefix), "/")
}
