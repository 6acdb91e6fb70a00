package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/proxy-upload/pkg/proxyupload"
	"github.com/tendant/proxy-upload/pkg/proxyupload/objectkey"
	"github.com/tendant/proxy-upload/pkg/proxyupload/proxysig"
	memorystorage "github.com/tendant/proxy-upload/pkg/proxyupload/storage/memory"
	s3storage "github.com/tendant/proxy-upload/pkg/proxyupload/storage/s3"
)

// Runtime environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Storage backend names reported by Config.StorageBackend
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// Config represents the runtime configuration, read from the environment
type Config struct {
	Port           string   `env:"PORT" env-default:"8080" env-description:"HTTP listen port for the standalone server"`
	Environment    string   `env:"ENVIRONMENT" env-default:"production" env-description:"development, production or testing"`
	LogLevel       string   `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	RoutePath      string   `env:"ROUTE_PATH" env-default:"/api/sign" env-description:"Path of the upload authorization endpoint"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-description:"Origins allowed by CORS; empty disables CORS"`

	Proxy  ProxyConfig
	R2     R2Config
	Upload UploadConfig
}

// ProxyConfig holds app-proxy signature settings
type ProxyConfig struct {
	Secret string        `env:"SHOPIFY_API_SECRET" env-description:"Shared secret used to verify proxy signatures"`
	MaxAge time.Duration `env:"PROXY_MAX_AGE" env-default:"0s" env-description:"Reject proxy timestamps older than this; 0 disables"`
}

// R2Config holds object store settings
type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID" env-description:"Cloudflare account ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID" env-description:"Object store access key ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY" env-description:"Object store secret access key"`
	Bucket          string `env:"R2_BUCKET" env-description:"Bucket receiving uploads; empty selects the in-memory presigner outside production"`
	PublicHost      string `env:"R2_PUBLIC_HOST" env-description:"Public host serving the bucket; enables cdnUrl"`
	Endpoint        string `env:"R2_ENDPOINT" env-description:"Explicit S3 endpoint; overrides the account-derived R2 endpoint"`
	Region          string `env:"R2_REGION" env-default:"auto" env-description:"Signing region"`
}

// UploadConfig holds the upload policy and URL lifetimes
type UploadConfig struct {
	MaxBytes     int64         `env:"UPLOAD_MAX_BYTES" env-default:"26214400" env-description:"Largest accepted declared size in bytes"`
	AllowedTypes []string      `env:"UPLOAD_ALLOWED_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp,application/pdf" env-description:"Accepted content types"`
	KeyPrefix    string        `env:"UPLOAD_KEY_PREFIX" env-default:"contact" env-description:"Object key prefix"`
	PutTTL       time.Duration `env:"UPLOAD_PUT_TTL" env-default:"60s" env-description:"Lifetime of upload URLs"`
	GetTTL       time.Duration `env:"UPLOAD_GET_TTL" env-default:"168h" env-description:"Lifetime of download URLs"`
}

// Load reads the configuration from the process environment and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Describe returns a listing of every supported environment variable
func Describe() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTesting:
	default:
		return fmt.Errorf("environment must be one of %s, %s, %s; got %q", EnvDevelopment, EnvProduction, EnvTesting, c.Environment)
	}

	if !strings.HasPrefix(c.RoutePath, "/") {
		return fmt.Errorf("route path must start with '/': %q", c.RoutePath)
	}

	if c.Proxy.Secret == "" {
		return errors.New("SHOPIFY_API_SECRET is required")
	}
	if c.Proxy.MaxAge < 0 {
		return errors.New("PROXY_MAX_AGE must not be negative")
	}

	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return errors.New("UPLOAD_ALLOWED_TYPES must list at least one content type")
	}
	if c.Upload.PutTTL <= 0 || c.Upload.PutTTL > proxyupload.MaxPresignExpiry {
		return fmt.Errorf("UPLOAD_PUT_TTL must be within (0, %s]", proxyupload.MaxPresignExpiry)
	}
	if c.Upload.GetTTL <= 0 || c.Upload.GetTTL > proxyupload.MaxPresignExpiry {
		return fmt.Errorf("UPLOAD_GET_TTL must be within (0, %s]", proxyupload.MaxPresignExpiry)
	}

	if c.R2.Bucket == "" {
		if c.Environment == EnvProduction {
			return errors.New("R2_BUCKET is required in production")
		}
		return nil
	}

	if c.R2.AccountID == "" && c.R2.Endpoint == "" {
		return errors.New("R2_ACCOUNT_ID or R2_ENDPOINT is required when R2_BUCKET is set")
	}
	if (c.R2.AccessKeyID == "") != (c.R2.SecretAccessKey == "") {
		return errors.New("R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY must be set together")
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// StorageBackend names the presigner BuildService will use
func (c *Config) StorageBackend() string {
	if c.R2.Bucket == "" {
		return StorageMemory
	}
	return StorageS3
}

// BuildPresigner creates the presigner selected by the configuration
func (c *Config) BuildPresigner() (proxyupload.Presigner, error) {
	if c.StorageBackend() == StorageMemory {
		return memorystorage.New("memory"), nil
	}

	backend, err := s3storage.New(s3storage.Config{
		Bucket:          c.R2.Bucket,
		AccountID:       c.R2.AccountID,
		Endpoint:        c.R2.Endpoint,
		Region:          c.R2.Region,
		AccessKeyID:     c.R2.AccessKeyID,
		SecretAccessKey: c.R2.SecretAccessKey,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 presigner: %w", err)
	}
	return backend, nil
}

// BuildVerifier creates the proxy signature verifier
func (c *Config) BuildVerifier() *proxysig.Verifier {
	return proxysig.New(
		proxysig.WithSecretKey(c.Proxy.Secret),
		proxysig.WithMaxAge(c.Proxy.MaxAge),
	)
}

// BuildService creates the upload authorization service
func (c *Config) BuildService(logger *slog.Logger) (*proxyupload.Service, error) {
	presigner, err := c.BuildPresigner()
	if err != nil {
		return nil, err
	}

	opts := []proxyupload.Option{
		proxyupload.WithPresigner(presigner),
		proxyupload.WithPolicy(proxyupload.NewPolicy(c.Upload.AllowedTypes, c.Upload.MaxBytes)),
		proxyupload.WithKeyGenerator(objectkey.NewTimestampGenerator(c.Upload.KeyPrefix)),
		proxyupload.WithPublicHost(c.R2.PublicHost),
		proxyupload.WithPutExpiry(c.Upload.PutTTL),
		proxyupload.WithGetExpiry(c.Upload.GetTTL),
	}
	if logger != nil {
		opts = append(opts, proxyupload.WithLogger(logger))
	}

	return proxyupload.New(opts...)
}

// LogValue implements slog.LogValuer; credentials and the proxy secret are omitted
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("environment", c.Environment),
		slog.String("route_path", c.RoutePath),
		slog.String("storage", c.StorageBackend()),
		slog.String("bucket", c.R2.Bucket),
		slog.String("public_host", c.R2.PublicHost),
		slog.Int64("max_bytes", c.Upload.MaxBytes),
		slog.Any("allowed_types", c.Upload.AllowedTypes),
		slog.Duration("put_ttl", c.Upload.PutTTL),
		slog.Duration("get_ttl", c.Upload.GetTTL),
		slog.Duration("proxy_max_age", c.Proxy.MaxAge),
	)
}
