package middleware

import (
	"net/http"

	"doitnow/internal/core/port"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/config"
	"doitnow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Dependencies struct {
	Config  *config.AppConfig
	Logger  *logger.Logger
	Metrics *telemetry.AppMetrics
	Cache   port.CacheRepository
}

// SetupGinMiddleware installs the shared chain in order: recovery, CORS,
// HTTPS enforcement, tracing, request context, access log, metrics, rate
// limiting and the GET response cache.
func SetupGinMiddleware(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	zapLogger := deps.Logger.Zap()

	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())

	httpsEnforcer := NewHTTPSEnforcer(cfg.EnforceHTTPS, zapLogger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(CurrentMiddleware())
	router.Use(LoggingMiddleware(deps.Logger))

	if deps.Metrics != nil {
		router.Use(MetricsMiddleware(deps.Metrics))
	}

	if cfg.RateLimitEnabled {
		rateLimiter := NewRateLimiter(cfg.RateLimitConfigs, zapLogger, deps.Metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if cfg.CacheEnabled && deps.Cache != nil {
		responseCache := NewResponseCache(deps.Cache, cfg.CacheTTL, zapLogger, deps.Metrics)
		router.Use(responseCache.CacheMiddleware())
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
