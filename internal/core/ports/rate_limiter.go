package ports

import (
	"context"
	"time"

	"github.com/avatarctic/docflow/internal/core/domain/ratelimit"
)

// RateLimitRepository provides the atomic counter primitive behind the limiter.
// Implementations must be safe for concurrent use by many callers sharing a key.
type RateLimitRepository interface {
	// Increment atomically adds one to the counter under key. When the increment
	// creates the counter (0 -> 1) the key is given an expiry of window; later
	// increments leave the expiry untouched. Returns the new count and the
	// remaining time to live.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RateLimiterService is a fixed-window limiter keyed by caller identity.
type RateLimiterService interface {
	// Allow consumes one request for identity. Store failures never surface to
	// the caller: the decision is then Allowed with FailedOpen set.
	Allow(ctx context.Context, identity string) ratelimit.Decision
}
