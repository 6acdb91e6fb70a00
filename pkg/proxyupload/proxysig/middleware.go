package proxysig

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
)

type contextKey string

const (
	// ShopContextKey is the context key for storing the verified shop domain
	ShopContextKey contextKey = "proxysig:shop"
)

// RejectMessage is the error text returned to clients on any verification failure
const RejectMessage = "Invalid proxy signature"

// RejectFunc is called for every rejected request before the 401 is written
type RejectFunc func(r *http.Request, err error)

// Middleware returns HTTP middleware that verifies proxy signatures.
// Rejected requests receive 401 with {"error":"Invalid proxy signature"};
// the cause is passed to onReject (which may be nil) and never sent to the
// client. Accepted requests continue with the shop stored in the context.
//
// Example:
//
//	r.With(proxysig.Middleware(v, nil)).Get("/api/sign", handler)
func Middleware(v *Verifier, onReject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if err := v.VerifyQuery(q); err != nil {
				if onReject != nil {
					onReject(r, err)
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": RejectMessage})
				return
			}

			ctx := context.WithValue(r.Context(), ShopContextKey, q.Get(ParamShop))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ShopFromContext returns the verified shop, or "" if the request did not
// pass through Middleware
func ShopFromContext(ctx context.Context) string {
	if shop, ok := ctx.Value(ShopContextKey).(string); ok {
		return shop
	}
	return ""
}
