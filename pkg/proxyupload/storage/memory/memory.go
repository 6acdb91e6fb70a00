package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MaxIssued bounds how many issued URLs a Presigner remembers; the oldest
// are dropped first.
const MaxIssued = 256

// Presigned records one URL handed out by the Presigner
type Presigned struct {
	Method      string
	Key         string
	ContentType string
	TTL         time.Duration
	URL         string
}

// Presigner is an in-memory implementation of proxyupload.Presigner. It
// produces memory://{bucket}/{key} URLs and remembers the last MaxIssued
// URLs it issued.
type Presigner struct {
	mu     sync.RWMutex
	bucket string
	issued []Presigned
	err    error
}

// New creates a new in-memory presigner for the named bucket
func New(bucket string) *Presigner {
	if bucket == "" {
		bucket = "memory"
	}
	return &Presigner{bucket: bucket}
}

// FailWith makes every subsequent presign call return err. Passing nil
// restores normal behavior.
func (p *Presigner) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// PresignPut returns a URL for uploading key with the given content type
func (p *Presigner) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return p.presign("PUT", key, contentType, ttl)
}

// PresignGet returns a URL for downloading key
func (p *Presigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return p.presign("GET", key, "", ttl)
}

// Issued returns a copy of the most recently issued URLs, oldest first
func (p *Presigner) Issued() []Presigned {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Presigned, len(p.issued))
	copy(out, p.issued)
	return out
}

func (p *Presigner) presign(method, key, contentType string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return "", p.err
	}
	if key == "" {
		return "", errors.New("object key is required")
	}

	q := url.Values{}
	q.Set("X-Method", method)
	q.Set("X-Expires", strconv.FormatInt(int64(ttl/time.Second), 10))
	if contentType != "" {
		q.Set("content-type", contentType)
	}

	u := fmt.Sprintf("memory://%s/%s?%s", p.bucket, key, q.Encode())
	if len(p.issued) >= MaxIssued {
		p.issued = p.issued[len(p.issued)-MaxIssued+1:]
	}
	p.issued = append(p.issued, Presigned{
		Method:      method,
		Key:         key,
		ContentType: contentType,
		TTL:         ttl,
		URL:         u,
	})

	return u, nil
}
