package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"doitnow/internal/adapter/http/middleware"
	"doitnow/internal/adapter/http/routes"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/config"
	"doitnow/pkg/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// StartServer serves the API until ctx is cancelled, then drains in-flight
// requests and releases the store.
func StartServer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, metrics *telemetry.AppMetrics) error {
	container, err := NewContainer(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}

	defer func() {
		if err := container.Close(); err != nil {
			log.Zap().Error("Failed to release resources", zap.Error(err))
		}
	}()

	router := routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:   container.TodoHandler,
		UserHandler:   container.UserHandler,
		HealthHandler: container.HealthHandler,
	}, middleware.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Cache:   container.Cache,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Zap().Info("Server starting",
		zap.String("address", srv.Addr),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	serveErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Zap().Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
