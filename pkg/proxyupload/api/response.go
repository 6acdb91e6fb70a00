package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// Client-facing error messages
const (
	MsgInvalidSignature = "Invalid proxy signature"
	MsgTypeNotAllowed   = "Type not allowed"
	MsgTooLarge         = "File too large"
	MsgInvalidSize      = "Invalid size"
	MsgSigningFailed    = "Could not sign upload"
)

// ErrorResponse is returned for any failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// noStore disables caching of everything the wrapped handler writes.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
