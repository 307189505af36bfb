package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores generated resume summaries keyed by resume content, so a
// resubmitted resume does not cost another model call.
type Cache interface {
	// GetSummary returns the cached summary and whether it was found.
	GetSummary(ctx context.Context, key string) (string, bool, error)

	// SetSummary stores a summary with TTL.
	SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error

	// Invalidate removes a cached summary.
	Invalidate(ctx context.Context, key string) error

	// Close closes the cache connection
	Close() error
}

// ResumeKey derives the cache key for a resume. Leading and trailing
// whitespace does not change the key.
func ResumeKey(resumeText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(resumeText)))
	return hex.EncodeToString(sum[:])
}
