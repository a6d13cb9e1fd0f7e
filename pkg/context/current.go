package context

import (
	"context"
	"sync"
)

const (
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyUserAgent = "user_agent"
	KeyMethod    = "method"
	KeyPath      = "path"
)

// Current holds request-scoped values shared between middleware, handlers and
// services.
type Current struct {
	mu   sync.RWMutex
	data map[string]any
}

func NewCurrent() *Current {
	return &Current{
		data: make(map[string]any),
	}
}

func (c *Current) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *Current) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *Current) GetString(key string) (string, bool) {
	if str, ok := c.Get(key).(string); ok {
		return str, true
	}
	return "", false
}

func (c *Current) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.data[key]
	return exists
}

func (c *Current) RequestID() string {
	id, _ := c.GetString(KeyRequestID)
	return id
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}

// GetCurrent never returns nil; outside a request it hands back an empty store.
func GetCurrent(ctx context.Context) *Current {
	if current, ok := FromContext(ctx); ok {
		return current
	}

	return NewCurrent()
}

// RequestID is a shortcut for GetCurrent(ctx).RequestID().
func RequestID(ctx context.Context) string {
	return GetCurrent(ctx).RequestID()
}
