// Package proxyupload authorizes direct-to-bucket uploads for requests that
// arrive through a signed app proxy.
//
// A Service turns an already-authenticated upload request (declared content
// type, declared size, file extension) into an UploadGrant: a randomized
// object key, a short-lived presigned PUT URL bound to the declared content
// type, a long-lived presigned GET URL, and an optional public CDN URL.
//
// URL signing is delegated to a Presigner. The S3-compatible implementation
// lives in storage/s3 and an in-process implementation for tests and local
// development lives in storage/memory. Proxy signature verification lives in
// proxysig, and the HTTP surface in api.
package proxyupload
