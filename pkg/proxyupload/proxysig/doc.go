// Package proxysig verifies HMAC-SHA256 app-proxy signatures.
//
// A storefront app proxy forwards customer requests to the app with four
// extra query parameters: shop, path_prefix, timestamp and signature. The
// signature is the lowercase hex HMAC-SHA256, keyed with the app's shared
// secret, of the plain concatenation shop + path_prefix + timestamp.
//
// # Basic Usage
//
//	v := proxysig.New(proxysig.WithSecretKey(secret))
//	if err := v.VerifyQuery(r.URL.Query()); err != nil {
//	    // reject with 401
//	}
//
// # HTTP Middleware
//
//	mux.Handle("/api/sign", proxysig.Middleware(v, nil)(uploadHandler))
//
// The middleware answers rejected requests itself and stores the verified
// shop in the request context (see ShopFromContext).
//
// # Freshness
//
// The scheme itself carries no expiry. WithMaxAge additionally rejects
// timestamps further than the given window from the current time.
package proxysig
