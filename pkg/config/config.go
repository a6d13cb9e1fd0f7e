package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Environment string `env:"APP_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	ServiceName string `env:"SERVICE_NAME" env-default:"doitnow"`

	DBDriver     string `env:"DB_DRIVER" env-default:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"./doitnow.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLLogLevel  string `env:"SQL_LOG_LEVEL" env-default:"info"`

	RedisURL     string        `env:"REDIS_URL"`
	CacheEnabled bool          `env:"CACHE_ENABLED" env-default:"true"`
	CacheTTL     time.Duration `env:"CACHE_TTL" env-default:"30s"`

	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool `env:"ENFORCE_HTTPS" env-default:"false"`

	TelemetryEnabled bool   `env:"TELEMETRY_ENABLED" env-default:"false"`
	OTLPEndpoint     string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	MetricsPort      string `env:"METRICS_PORT" env-default:"9090"`
	LokiURL          string `env:"LOKI_URL"`
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *AppConfig) Address() string {
	return ":" + c.Port
}

// GetDefaultConfig returns the per-route rate limits and the values used when
// nothing is configured. Keys are "METHOD /route" or a bare route prefix.
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:      "development",
		Port:             "8080",
		ServiceName:      "doitnow",
		DBDriver:         DriverSQLite,
		DatabasePath:     "./doitnow.db",
		SQLLogLevel:      "info",
		CacheEnabled:     true,
		CacheTTL:         30 * time.Second,
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /api/todos": {
				Requests: 30,
				Window:   time.Minute,
			},
			"POST /api/users": {
				Requests: 10,
				Window:   time.Minute,
			},
			"DELETE /api/todos/:id": {
				Requests: 20,
				Window:   time.Minute,
			},
			"DELETE /api/users/:id": {
				Requests: 10,
				Window:   time.Minute,
			},
			"/api/todos": {
				Requests: 300,
				Window:   time.Minute,
			},
			"/api/users": {
				Requests: 120,
				Window:   time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,
		OTLPEndpoint: "localhost:4317",
		MetricsPort:  "9090",
	}
}
