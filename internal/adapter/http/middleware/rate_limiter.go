package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"doitnow/internal/core/model/response"
	"doitnow/internal/core/telemetry"
	"doitnow/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const defaultRateLimitKey = "default"

type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]config.RateLimitConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
	now     func() time.Time
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// NewRateLimiter keeps fixed-window counters per client IP and route. Limits
// are looked up as "METHOD /route", then the longest configured route prefix,
// then "default".
func NewRateLimiter(configs map[string]config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	limits := make(map[string]config.RateLimitConfig, len(configs)+1)

	for key, limit := range configs {
		limits[key] = limit
	}

	if _, ok := limits[defaultRateLimitKey]; !ok {
		limits[defaultRateLimitKey] = config.RateLimitConfig{Requests: 60, Window: time.Minute}
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  limits,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path
		limit := rl.limitFor(methodPath, path)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, GetClientIP(c))

		allowed, remaining, resetTime := rl.checkRateLimit(key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, "ip")
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", limit.Requests),
				zap.Duration("window", limit.Window))

			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Timestamp: rl.now().UTC(),
				Status:    http.StatusTooManyRequests,
				Error:     http.StatusText(http.StatusTooManyRequests),
				Message:   fmt.Sprintf("Too many requests. Limit: %d per %v", limit.Requests, limit.Window),
				Path:      c.Request.URL.Path,
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, "ip")
		}

		c.Next()
	}
}

func (rl *RateLimiter) limitFor(methodPath, path string) config.RateLimitConfig {
	if limit, ok := rl.config[methodPath]; ok {
		return limit
	}

	if limit, ok := rl.config[path]; ok {
		return limit
	}

	best := ""

	for key := range rl.config {
		if strings.HasPrefix(key, "/") && strings.HasPrefix(path, key+"/") && len(key) > len(best) {
			best = key
		}
	}

	if best != "" {
		return rl.config[best]
	}

	return rl.config[defaultRateLimitKey]
}

func (rl *RateLimiter) checkRateLimit(key string, limit config.RateLimitConfig) (bool, int, time.Time) {
	now := rl.now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.Before(rateLimitEntry.ResetTime) {
			if rateLimitEntry.Count >= limit.Requests {
				return false, 0, rateLimitEntry.ResetTime
			}

			rateLimitEntry.Count++
			rl.cache.Set(key, rateLimitEntry, rateLimitEntry.ResetTime.Sub(now))

			return true, limit.Requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
		}
	}

	resetTime := now.Add(limit.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)

	return true, limit.Requests - 1, resetTime
}
