package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/tendant/proxy-upload/pkg/proxyupload/metrics"
)

// DefaultRoutePath is where the upload handler is mounted
const DefaultRoutePath = "/api/sign"

// RouterConfig controls the surrounding router shared by the server and
// serverless entry points
type RouterConfig struct {
	// RoutePath is the path of the upload handler (default: DefaultRoutePath)
	RoutePath string

	// RequestLogger enables per-request access logs when set
	RequestLogger *httplog.Logger

	// Metrics enables HTTP metrics and exposes them at /metrics when set
	Metrics *metrics.Metrics

	// AllowedOrigins enables CORS for the listed origins when non-empty
	AllowedOrigins []string

	// Timeout bounds each request (default: 10s)
	Timeout time.Duration
}

// NewRouter mounts h and the operational endpoints on a chi router
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	if cfg.RoutePath == "" {
		cfg.RoutePath = DefaultRoutePath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.RequestLogger != nil {
		r.Use(httplog.RequestLogger(cfg.RequestLogger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", handleHealth)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	r.Handle(cfg.RoutePath, h)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}
