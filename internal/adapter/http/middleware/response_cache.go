package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"doitnow/internal/core/port"
	"doitnow/internal/core/telemetry"
	. "doitnow/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const responseCachePrefix = "http_cache:"

// ResponseCache serves repeated GET requests from a port.CacheRepository.
// Any successful write flushes every cached response, since a user delete
// also removes todos.
//
// Keys carry the write generation seen when the GET started. A read that
// overlaps a write stores its body under the old generation, which no later
// request looks up.
type ResponseCache struct {
	store      port.CacheRepository
	ttl        time.Duration
	logger     *zap.Logger
	metrics    *telemetry.AppMetrics
	generation atomic.Uint64
}

type CachedResponse struct {
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewResponseCache(store port.CacheRepository, ttl time.Duration, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	return &ResponseCache{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			rc.invalidateAfterWrite(c)
			return
		}

		path := c.FullPath()
		if path == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := rc.generateCacheKey(c)

		if cached, ok := rc.lookup(c, cacheKey); ok {
			_, span := CreateChildSpan(ctx, "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", cacheKey),
				attribute.String("cache.path", path),
				attribute.Int("cache.body_size", len(cached.Body)),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(ctx, path)
			}

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", fmt.Sprintf("%.0f", time.Since(cached.Timestamp).Seconds()))
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(ctx, path)
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}

		rc.save(c, cacheKey, CachedResponse{
			StatusCode:  writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			Timestamp:   time.Now(),
		})
	}
}

func (rc *ResponseCache) lookup(c *gin.Context, key string) (CachedResponse, bool) {
	var cached CachedResponse

	data, err := rc.store.Get(c.Request.Context(), key)
	if err != nil {
		if !errors.Is(err, port.ErrCacheMiss) {
			rc.logger.Warn("Response cache read failed", zap.String("cache_key", key), zap.Error(err))
		}
		return cached, false
	}

	if err := json.Unmarshal(data, &cached); err != nil {
		rc.logger.Warn("Discarding unreadable cached response", zap.String("cache_key", key), zap.Error(err))
		_ = rc.store.Delete(c.Request.Context(), key)
		return cached, false
	}

	return cached, true
}

func (rc *ResponseCache) save(c *gin.Context, key string, cached CachedResponse) {
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}

	if err := rc.store.Set(c.Request.Context(), key, data, rc.ttl); err != nil {
		rc.logger.Warn("Response cache write failed", zap.String("cache_key", key), zap.Error(err))
	}
}

func (rc *ResponseCache) invalidateAfterWrite(c *gin.Context) {
	if c.Request.Method == http.MethodOptions || c.Request.Method == http.MethodHead {
		return
	}

	if c.Writer.Status() >= http.StatusBadRequest {
		return
	}

	rc.InvalidateAll(c)
}

func (rc *ResponseCache) InvalidateAll(c *gin.Context) {
	rc.generation.Add(1)

	if err := rc.store.DeleteByPrefix(c.Request.Context(), responseCachePrefix); err != nil {
		rc.logger.Error("Response cache invalidation failed", zap.Error(err))
		return
	}

	rc.logger.Debug("Response cache invalidated", zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path))
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context) string {
	hash := md5.Sum([]byte(c.Request.URL.Path + "?" + c.Request.URL.RawQuery))

	return fmt.Sprintf("%s%d:%s:%x", responseCachePrefix, rc.generation.Load(), c.FullPath(), hash)
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
