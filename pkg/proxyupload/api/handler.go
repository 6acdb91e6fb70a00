package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/proxy-upload/pkg/proxyupload"
	"github.com/tendant/proxy-upload/pkg/proxyupload/metrics"
	"github.com/tendant/proxy-upload/pkg/proxyupload/proxysig"
)

// Upload query parameters, in addition to the signed proxy parameters
const (
	ParamContentType = "ct"
	ParamSize        = "size"
	ParamExtension   = "ext"
)

// Handler authorizes one upload per request: it verifies the proxy
// signature, checks the declared file against the upload policy and answers
// with a pair of presigned URLs.
type Handler struct {
	service  *proxyupload.Service
	verifier *proxysig.Verifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	chain    http.Handler
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithMetrics records grant outcomes in m
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates the upload authorization handler
func NewHandler(service *proxyupload.Service, verifier *proxysig.Verifier, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:  service,
		verifier: verifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.chain = chi.Chain(
		noStore,
		proxysig.Middleware(verifier, h.onReject),
	).HandlerFunc(h.authorize)

	return h
}

// ServeHTTP handles the request regardless of method or path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

// Routes returns a router serving the handler at its root for any method
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/", h)
	return r
}

func (h *Handler) onReject(r *http.Request, err error) {
	h.metrics.ObserveGrant(metrics.OutcomeUnauthorized)
	h.logger.WarnContext(r.Context(), "proxy signature rejected",
		"request_id", requestID(r),
		"shop", r.URL.Query().Get(proxysig.ParamShop),
		"err", err)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	shop := proxysig.ShopFromContext(ctx)

	// Type is judged before size, so a disallowed type with a malformed
	// size reports the type.
	contentType := q.Get(ParamContentType)
	if contentType == "" {
		contentType = proxyupload.DefaultContentType
	}
	if !h.service.Policy().Allows(contentType) {
		h.reject(r, shop, fmt.Errorf("%w: %q", proxyupload.ErrTypeNotAllowed, contentType))
		writeError(w, r, http.StatusBadRequest, MsgTypeNotAllowed)
		return
	}

	size, err := parseSize(q.Get(ParamSize))
	if err != nil {
		h.reject(r, shop, err)
		writeError(w, r, http.StatusBadRequest, MsgInvalidSize)
		return
	}

	grant, err := h.service.Authorize(ctx, proxyupload.AuthorizeRequest{
		ContentType: contentType,
		Size:        size,
		Extension:   q.Get(ParamExtension),
		Shop:        shop,
	})
	switch {
	case errors.Is(err, proxyupload.ErrTypeNotAllowed):
		h.reject(r, shop, err)
		writeError(w, r, http.StatusBadRequest, MsgTypeNotAllowed)
		return
	case errors.Is(err, proxyupload.ErrTooLarge):
		h.reject(r, shop, err)
		writeError(w, r, http.StatusBadRequest, MsgTooLarge)
		return
	case errors.Is(err, proxyupload.ErrInvalidSize):
		h.reject(r, shop, err)
		writeError(w, r, http.StatusBadRequest, MsgInvalidSize)
		return
	case err != nil:
		h.metrics.ObserveGrant(metrics.OutcomeError)
		h.logger.ErrorContext(ctx, "failed to authorize upload",
			"request_id", requestID(r),
			"shop", shop,
			"err", err)
		writeError(w, r, http.StatusInternalServerError, MsgSigningFailed)
		return
	}

	h.metrics.ObserveGrant(metrics.OutcomeIssued)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, grant)
}

func (h *Handler) reject(r *http.Request, shop string, err error) {
	h.metrics.ObserveGrant(metrics.OutcomeRejected)
	h.logger.InfoContext(r.Context(), "upload rejected",
		"request_id", requestID(r),
		"shop", shop,
		"err", err)
}

// parseSize reads the declared byte count. Absent means zero.
func parseSize(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, proxyupload.ErrInvalidSize
	}
	if n < 0 {
		return 0, proxyupload.ErrInvalidSize
	}
	return n, nil
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
