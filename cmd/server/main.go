package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/proxy-upload/internal/logging"
	"github.com/tendant/proxy-upload/pkg/proxyupload/api"
	"github.com/tendant/proxy-upload/pkg/proxyupload/config"
	"github.com/tendant/proxy-upload/pkg/proxyupload/metrics"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n\n%s\n", err, config.Describe())
		os.Exit(1)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	router, err := newRouter(cfg, logger)
	if err != nil {
		logger.Error("failed to build handler", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("proxy-upload server starting", "port", cfg.Port, "config", cfg)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}

func newRouter(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	svc, err := cfg.BuildService(logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	handler := api.NewHandler(svc, cfg.BuildVerifier(),
		api.WithMetrics(m),
		api.WithLogger(logger),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 && cfg.IsDevelopment() {
		origins = []string{"*"}
	}

	return api.NewRouter(handler, api.RouterConfig{
		RoutePath:      cfg.RoutePath,
		RequestLogger:  logging.NewRequestLogger("proxy-upload", cfg.Environment, cfg.LogLevel),
		Metrics:        m,
		AllowedOrigins: origins,
	}), nil
}
