package http

import (
	"context"
	"errors"
	"fmt"

	"doitnow/internal/adapter/cache"
	"doitnow/internal/adapter/database/postgres"
	pgrepository "doitnow/internal/adapter/database/postgres/repository"
	"doitnow/internal/adapter/database/sqlite"
	sqliterepository "doitnow/internal/adapter/database/sqlite/repository"
	"doitnow/internal/adapter/http/handler"
	"doitnow/internal/core/port"
	"doitnow/internal/core/service"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/config"
	"doitnow/pkg/logger"
)

type Container struct {
	UserRepo port.UserRepository
	TodoRepo port.TodoRepository
	Health   port.HealthChecker
	Cache    port.CacheRepository

	UserService port.UserService
	TodoService port.TodoService

	UserHandler   *handler.UserHandler
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler

	closers []func() error
}

// NewContainer opens the store selected by DB_DRIVER and wires repositories,
// services and handlers on top of it.
func NewContainer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, metrics *telemetry.AppMetrics) (*Container, error) {
	c := &Container{}

	tx, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := c.openCache(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}

	var recorder port.OperationRecorder = telemetry.NewNoOpRecorder()
	if metrics != nil {
		recorder = metrics
	}

	userSvc := service.NewUserService(c.UserRepo, tx, recorder, log)
	todoSvc := service.NewTodoService(c.TodoRepo, c.UserRepo, tx, recorder, log)

	c.UserService = userSvc
	c.TodoService = todoSvc

	c.UserHandler = handler.NewUserHandler(userSvc)
	c.TodoHandler = handler.NewTodoHandler(todoSvc)
	c.HealthHandler = handler.NewHealthHandler(c.Health)

	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg *config.AppConfig) (port.Transactor, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		c.UserRepo = pgrepository.NewUserRepository(db)
		c.TodoRepo = pgrepository.NewTodoRepository(db)
		c.Health = db
		c.closers = append(c.closers, func() error {
			db.Close()
			return nil
		})

		return db, nil
	case config.DriverSQLite:
		db, err := sqlite.New(ctx, sqlite.Options{
			Path:     cfg.DatabasePath,
			Name:     cfg.ServiceName,
			LogLevel: cfg.SQLLogLevel,
		})
		if err != nil {
			return nil, err
		}

		c.UserRepo = sqliterepository.NewUserRepository(db)
		c.TodoRepo = sqliterepository.NewTodoRepository(db)
		c.Health = db
		c.closers = append(c.closers, db.Close)

		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func (c *Container) openCache(ctx context.Context, cfg *config.AppConfig) error {
	if !cfg.CacheEnabled {
		return nil
	}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}

		c.Cache = redisCache
	} else {
		c.Cache = cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	c.closers = append(c.closers, c.Cache.Close)

	return nil
}

// Close releases the cache and the store, in reverse order of opening.
func (c *Container) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}

	c.closers = nil

	return errors.Join(errs...)
}
