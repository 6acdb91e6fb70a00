package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/proxy-upload/pkg/proxyupload/api"
	"github.com/tendant/proxy-upload/pkg/proxyupload/proxysig"
)

// signOptions describes one upload authorization request
type signOptions struct {
	BaseURL     string
	Shop        string
	PathPrefix  string
	Timestamp   string
	ContentType string
	Size        int64
	Extension   string
}

// NewURLCommand creates the url command
func NewURLCommand() *cobra.Command {
	opts := signOptions{}

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print a signed upload authorization URL",
		Long:  `Build the query an app proxy would forward, sign it with the shared secret and print the full URL.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			verifier, err := newVerifier(secret, 0)
			if err != nil {
				return err
			}

			signed, err := buildSignedURL(verifier, opts, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:8080"+api.DefaultRoutePath, "endpoint receiving the request")
	cmd.Flags().StringVar(&opts.Shop, "shop", "", "shop domain, e.g. example.myshopify.com")
	cmd.Flags().StringVar(&opts.PathPrefix, "path-prefix", "/apps/upload", "app proxy path prefix")
	cmd.Flags().StringVar(&opts.Timestamp, "timestamp", "", "unix seconds (default: now)")
	cmd.Flags().StringVar(&opts.ContentType, "ct", "image/jpeg", "declared content type")
	cmd.Flags().Int64Var(&opts.Size, "size", 0, "declared size in bytes")
	cmd.Flags().StringVar(&opts.Extension, "ext", "", "file extension")
	_ = cmd.MarkFlagRequired("shop")

	return cmd
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "verify <url>",
		Short: "Check the proxy signature of a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			verifier, err := newVerifier(secret, maxAge)
			if err != nil {
				return err
			}

			shop, err := verifyURL(verifier, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signature valid for shop %s\n", shop)
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "also reject timestamps older than this (0 disables)")

	return cmd
}

func newVerifier(secret string, maxAge time.Duration) (*proxysig.Verifier, error) {
	if secret == "" {
		return nil, errors.New("a secret is required (--secret or SHOPIFY_API_SECRET)")
	}
	return proxysig.New(proxysig.WithSecretKey(secret), proxysig.WithMaxAge(maxAge)), nil
}

func buildSignedURL(v *proxysig.Verifier, opts signOptions, now time.Time) (string, error) {
	if opts.Shop == "" {
		return "", errors.New("shop is required")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base URL must be absolute: %q", opts.BaseURL)
	}

	timestamp := strings.TrimSpace(opts.Timestamp)
	if timestamp == "" {
		timestamp = strconv.FormatInt(now.Unix(), 10)
	}

	q := base.Query()
	q.Set(proxysig.ParamShop, opts.Shop)
	q.Set(proxysig.ParamPathPrefix, opts.PathPrefix)
	q.Set(proxysig.ParamTimestamp, timestamp)
	if opts.ContentType != "" {
		q.Set(api.ParamContentType, opts.ContentType)
	}
	q.Set(api.ParamSize, strconv.FormatInt(opts.Size, 10))
	if opts.Extension != "" {
		q.Set(api.ParamExtension, opts.Extension)
	}

	if err := v.SignQuery(q); err != nil {
		return "", err
	}

	base.RawQuery = q.Encode()
	return base.String(), nil
}

func verifyURL(v *proxysig.Verifier, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	q := u.Query()
	if err := v.VerifyQuery(q); err != nil {
		return "", err
	}
	return q.Get(proxysig.ParamShop), nil
}
