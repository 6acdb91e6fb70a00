package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/proxy-upload/pkg/proxyupload"
	"github.com/tendant/proxy-upload/pkg/proxyupload/api"
	"github.com/tendant/proxy-upload/pkg/proxyupload/proxysig"
	memorystorage "github.com/tendant/proxy-upload/pkg/proxyupload/storage/memory"
)

const testSecret = "hush"

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHOPIFY_API_SECRET", "")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestBuildSignedURL(t *testing.T) {
	v := proxysig.New(proxysig.WithSecretKey(testSecret))

	signed, err := buildSignedURL(v, signOptions{
		BaseURL:     "https://shop.example.com/apps/upload/api/sign",
		Shop:        "example.myshopify.com",
		PathPrefix:  "/apps/upload",
		Timestamp:   "1700000000",
		ContentType: "image/png",
		Size:        2048,
		Extension:   "png",
	}, time.Now())
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", u.Host)
	assert.Equal(t, "/apps/upload/api/sign", u.Path)

	q := u.Query()
	assert.Equal(t, "example.myshopify.com", q.Get("shop"))
	assert.Equal(t, "image/png", q.Get("ct"))
	assert.Equal(t, "2048", q.Get("size"))
	assert.Equal(t, "png", q.Get("ext"))
	assert.Equal(t, "3b5fc3ee3635c6c7814a8499452c85bb3702b9c4543e94e1993b122dac6caec8", q.Get("signature"))
}

func TestBuildSignedURLDefaultsTimestamp(t *testing.T) {
	v := proxysig.New(proxysig.WithSecretKey(testSecret))
	now := time.Unix(1712345678, 0)

	signed, err := buildSignedURL(v, signOptions{
		BaseURL: "http://localhost:8080/api/sign",
		Shop:    "example.myshopify.com",
	}, now)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "1712345678", u.Query().Get("timestamp"))
	assert.Empty(t, u.Query().Get("ext"))
}

func TestBuildSignedURLErrors(t *testing.T) {
	v := proxysig.New(proxysig.WithSecretKey(testSecret))

	_, err := buildSignedURL(v, signOptions{BaseURL: "http://localhost/api/sign"}, time.Now())
	assert.EqualError(t, err, "shop is required")

	_, err = buildSignedURL(v, signOptions{BaseURL: "/api/sign", Shop: "s"}, time.Now())
	assert.ErrorContains(t, err, "must be absolute")

	_, err = buildSignedURL(proxysig.New(), signOptions{BaseURL: "http://localhost/api/sign", Shop: "s"}, time.Now())
	assert.ErrorIs(t, err, proxysig.ErrNoSecretKey)
}

func TestVerifyURL(t *testing.T) {
	v := proxysig.New(proxysig.WithSecretKey(testSecret))

	signed, err := buildSignedURL(v, signOptions{
		BaseURL:    "http://localhost:8080/api/sign",
		Shop:       "example.myshopify.com",
		PathPrefix: "/apps/upload",
		Timestamp:  "1700000000",
	}, time.Now())
	require.NoError(t, err)

	shop, err := verifyURL(v, signed)
	require.NoError(t, err)
	assert.Equal(t, "example.myshopify.com", shop)

	tampered := strings.Replace(signed, "shop=example", "shop=evil", 1)
	_, err = verifyURL(v, tampered)
	assert.ErrorIs(t, err, proxysig.ErrInvalidSignature)

	other := proxysig.New(proxysig.WithSecretKey("other"))
	_, err = verifyURL(other, signed)
	assert.ErrorIs(t, err, proxysig.ErrInvalidSignature)
}

func TestURLAndVerifyCommands(t *testing.T) {
	signed, err := runCommand(t, "url",
		"--secret", testSecret,
		"--shop", "example.myshopify.com",
		"--timestamp", "1700000000",
		"--ct", "application/pdf",
		"--size", "100",
		"--ext", "pdf",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "http://localhost:8080/api/sign?"))

	out, err := runCommand(t, "verify", "--secret", testSecret, signed)
	require.NoError(t, err)
	assert.Equal(t, "Signature valid for shop example.myshopify.com", out)

	_, err = runCommand(t, "verify", "--secret", "wrong", signed)
	assert.ErrorIs(t, err, proxysig.ErrInvalidSignature)

	_, err = runCommand(t, "verify", "--secret", testSecret, "--max-age", "1m", signed)
	assert.ErrorIs(t, err, proxysig.ErrExpired)
}

func TestCommandsRequireSecret(t *testing.T) {
	_, err := runCommand(t, "url", "--shop", "example.myshopify.com")
	assert.ErrorContains(t, err, "secret is required")
}

func TestSignedURLAcceptedByHandler(t *testing.T) {
	verifier := proxysig.New(proxysig.WithSecretKey(testSecret))
	svc, err := proxyupload.New(proxyupload.WithPresigner(memorystorage.New("uploads")))
	require.NoError(t, err)

	server := httptest.NewServer(api.NewRouter(api.NewHandler(svc, verifier), api.RouterConfig{}))
	defer server.Close()

	signed, err := buildSignedURL(verifier, signOptions{
		BaseURL:     server.URL + api.DefaultRoutePath,
		Shop:        "example.myshopify.com",
		PathPrefix:  "/apps/upload",
		ContentType: "image/webp",
		Size:        4096,
		Extension:   "webp",
	}, time.Now())
	require.NoError(t, err)

	resp, err := http.Get(signed)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var grant proxyupload.UploadGrant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&grant))
	assert.True(t, strings.HasPrefix(grant.Key, "contact/"))
	assert.True(t, strings.HasSuffix(grant.Key, ".webp"))
	assert.Nil(t, grant.CDNURL)
}
