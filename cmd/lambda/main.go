package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/tendant/proxy-upload/internal/logging"
	"github.com/tendant/proxy-upload/pkg/proxyupload/api"
	"github.com/tendant/proxy-upload/pkg/proxyupload/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	svc, err := cfg.BuildService(logger)
	if err != nil {
		logger.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	handler := api.NewHandler(svc, cfg.BuildVerifier(), api.WithLogger(logger))
	router := api.NewRouter(handler, api.RouterConfig{
		RoutePath:      cfg.RoutePath,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	logger.Info("proxy-upload lambda starting", "config", cfg)
	lambda.Start(httpadapter.NewV2(router).ProxyWithContext)
}
