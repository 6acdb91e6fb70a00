package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"
)

// DefaultRegion is the signing region Cloudflare R2 expects
const DefaultRegion = "auto"

// Config options for the S3-compatible presigner
type Config struct {
	Bucket          string // Bucket name
	AccountID       string // Cloudflare account ID; derives the R2 endpoint
	Endpoint        string // Optional explicit endpoint; overrides AccountID
	Region          string // Signing region (default: "auto")
	AccessKeyID     string // Access key ID
	SecretAccessKey string // Secret access key
	UsePathStyle    bool   // Use path-style addressing
}

// ResolveEndpoint returns the endpoint the client will sign against. An
// empty result means the SDK's default AWS endpoint.
func (c Config) ResolveEndpoint() string {
	if c.Endpoint != "" {
		return strings.TrimSuffix(c.Endpoint, "/")
	}
	if c.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	}
	return ""
}

// Backend signs object URLs for an S3-compatible bucket. Signing is a local
// computation; no request is sent to the store.
type Backend struct {
	presignClient *s3.PresignClient
	bucket        string
	config        Config
}

// New creates a new S3-compatible presigner
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = DefaultRegion
	}

	if (config.AccessKeyID == "") != (config.SecretAccessKey == "") {
		return nil, errors.New("access key ID and secret access key must be set together")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" {
		// Use provided credentials
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := config.ResolveEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})

	return &Backend{
		presignClient: s3.NewPresignClient(client),
		bucket:        config.Bucket,
		config:        config,
	}, nil
}

// Bucket returns the bucket the backend signs for
func (b *Backend) Bucket() string {
	return b.bucket
}

// PresignPut returns a presigned URL for uploading key. The Content-Type
// header is part of the signature, so the upload must send the same value.
func (b *Backend) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := b.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl), signContentType)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return result.URL, nil
}

// PresignGet returns a presigned URL for downloading key
func (b *Backend) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}

	result, err := b.presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return result.URL, nil
}

// removeContentTypeHeaderID names the SDK build middleware that drops
// Content-Type from requests without a body.
const removeContentTypeHeaderID = "RemoveContentTypeHeader"

// signContentType keeps Content-Type on the bodiless PUT being presigned so
// that it ends up in X-Amz-SignedHeaders.
func signContentType(po *s3.PresignOptions) {
	po.ClientOptions = append(po.ClientOptions, func(o *s3.Options) {
		o.APIOptions = append(o.APIOptions, keepContentTypeHeader)
	})
}

func keepContentTypeHeader(stack *middleware.Stack) error {
	if _, ok := stack.Build.Get(removeContentTypeHeaderID); !ok {
		return nil
	}
	_, err := stack.Build.Remove(removeContentTypeHeaderID)
	return err
}
