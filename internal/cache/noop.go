package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used as a fallback when Redis is unavailable - all operations succeed
// but no actual caching occurs (always cache miss).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetSummary always reports a miss
func (c *NoOpCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

// SetSummary does nothing and always succeeds
func (c *NoOpCache) SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error {
	return nil
}

// Invalidate does nothing and always succeeds
func (c *NoOpCache) Invalidate(ctx context.Context, key string) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
