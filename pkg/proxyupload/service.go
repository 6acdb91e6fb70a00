package proxyupload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/proxy-upload/pkg/proxyupload/objectkey"
)

// Service issues upload grants. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	presigner  Presigner
	keys       KeyGenerator
	policy     Policy
	publicHost string
	putExpiry  time.Duration
	getExpiry  time.Duration
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*Service)

// WithPresigner sets the presigner used to sign PUT and GET URLs
func WithPresigner(p Presigner) Option {
	return func(s *Service) {
		s.presigner = p
	}
}

// WithKeyGenerator replaces the default timestamp key generator
func WithKeyGenerator(g KeyGenerator) Option {
	return func(s *Service) {
		s.keys = g
	}
}

// WithPolicy sets the content-type allow-list and size ceiling
func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithPublicHost sets the host serving the bucket publicly. Any scheme is
// dropped since CDN URLs are always https. When empty, grants carry a null
// CDN URL.
func WithPublicHost(host string) Option {
	return func(s *Service) {
		if _, rest, ok := strings.Cut(host, "://"); ok {
			host = rest
		}
		s.publicHost = strings.TrimRight(host, "/")
	}
}

// WithPutExpiry sets the lifetime of upload URLs
func WithPutExpiry(d time.Duration) Option {
	return func(s *Service) {
		s.putExpiry = d
	}
}

// WithGetExpiry sets the lifetime of download URLs
func WithGetExpiry(d time.Duration) Option {
	return func(s *Service) {
		s.getExpiry = d
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (*Service, error) {
	s := &Service{
		policy:    DefaultPolicy(),
		putExpiry: DefaultPutExpiry,
		getExpiry: DefaultGetExpiry,
	}

	for _, option := range options {
		option(s)
	}

	if s.presigner == nil {
		return nil, ErrNoPresigner
	}
	if s.keys == nil {
		s.keys = objectkey.NewTimestampGenerator(objectkey.DefaultPrefix)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.putExpiry <= 0 || s.putExpiry > MaxPresignExpiry {
		return nil, fmt.Errorf("put expiry must be within (0, %s], got %s", MaxPresignExpiry, s.putExpiry)
	}
	if s.getExpiry <= 0 || s.getExpiry > MaxPresignExpiry {
		return nil, fmt.Errorf("get expiry must be within (0, %s], got %s", MaxPresignExpiry, s.getExpiry)
	}

	return s, nil
}

// Policy returns the upload policy in effect.
func (s *Service) Policy() Policy {
	return s.policy
}

// Authorize validates req against the policy, derives a fresh object key and
// signs an upload URL and a download URL for it.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (*UploadGrant, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	if err := s.policy.Check(contentType, req.Size); err != nil {
		return nil, err
	}

	key, err := s.keys.GenerateKey(req.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to generate object key: %w", err)
	}

	putURL, err := s.presigner.PresignPut(ctx, key, contentType, s.putExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}

	getURL, err := s.presigner.PresignGet(ctx, key, s.getExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download for %s: %w", key, err)
	}

	grant := &UploadGrant{
		PutURL:       putURL,
		Key:          key,
		SignedGetURL: getURL,
		CDNURL:       s.cdnURL(key),
	}

	s.logger.InfoContext(ctx, "upload authorized",
		"shop", req.Shop,
		"key", key,
		"content_type", contentType,
		"size", req.Size)

	return grant, nil
}

func (s *Service) cdnURL(key string) *string {
	if s.publicHost == "" {
		return nil
	}
	u := fmt.Sprintf("https://%s/%s", s.publicHost, key)
	return &u
}
