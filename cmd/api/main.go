package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	api "doitnow/internal/adapter/http"
	"doitnow/internal/adapter/telemetry"
	"doitnow/pkg/config"
	"doitnow/pkg/logger"

	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLogger, err := logger.New(cfg.ServiceName, cfg.LokiURL)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer appLogger.Sync()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		TracingEnabled: cfg.TelemetryEnabled,
	}, appLogger.Zap())
	if err != nil {
		appLogger.Zap().Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			appLogger.Zap().Error("Failed to shut down telemetry", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx, 15*time.Second)

	if err := api.StartServer(ctx, cfg, appLogger, tel.AppMetrics); err != nil {
		appLogger.Zap().Error("Server stopped with error", zap.Error(err))
	}
}
