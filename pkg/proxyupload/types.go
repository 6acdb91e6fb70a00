package proxyupload

import "time"

// Defaults applied when the corresponding option is not set.
const (
	DefaultMaxBytes    = int64(25 * 1024 * 1024) // 25 MiB
	DefaultContentType = "application/octet-stream"
	DefaultPutExpiry   = 60 * time.Second
	DefaultGetExpiry   = 7 * 24 * time.Hour
)

// MaxPresignExpiry is the longest lifetime a SigV4 presigned URL may carry.
const MaxPresignExpiry = 7 * 24 * time.Hour

// DefaultAllowedTypes is the content-type allow-list used by DefaultPolicy.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// AuthorizeRequest carries the declared attributes of a file the caller
// wants to upload. The caller's identity has already been verified.
type AuthorizeRequest struct {
	// ContentType is the declared MIME type; empty means DefaultContentType.
	ContentType string
	// Size is the declared size in bytes.
	Size int64
	// Extension is the raw file extension; it is sanitized before use.
	Extension string
	// Shop identifies the verified caller. Only used for logging.
	Shop string
}

// UploadGrant is the result of a successful authorization. Its JSON form is
// the response body returned to the client.
type UploadGrant struct {
	PutURL       string  `json:"putUrl"`
	Key          string  `json:"key"`
	SignedGetURL string  `json:"signedGetUrl"`
	CDNURL       *string `json:"cdnUrl"`
}
