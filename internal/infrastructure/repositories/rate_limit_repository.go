package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// incrementScript bumps the counter and sets its expiry only on the 0 -> 1
// transition, all inside one script so concurrent callers cannot interleave.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

// RateLimitRedisRepository implements rate limiting counter storage with Redis.
type RateLimitRedisRepository struct {
	r redis.Cmdable
}

func NewRateLimitRedisRepository(r redis.Cmdable) ports.RateLimitRepository {
	return &RateLimitRedisRepository{r: r}
}

// Increment runs the counter script for key. The window is rounded up to whole
// seconds with a minimum of one.
func (repo *RateLimitRedisRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	secs := int64((window + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	res, err := incrementScript.Run(ctx, repo.r, []string{key}, secs).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit increment %q: %w", key, err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit increment %q: unexpected reply %v", key, res)
	}
	count, ok := res[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("rate limit increment %q: unexpected count %T", key, res[0])
	}
	ttl, _ := res[1].(int64)
	if ttl < 0 {
		ttl = 0
	}
	return count, time.Duration(ttl) * time.Second, nil
}
