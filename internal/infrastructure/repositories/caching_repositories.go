package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/internal/core/ports"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// loadFullListWithSingleflight coalesces concurrent loads of the same list and
// caches the result under listKey.
func loadFullListWithSingleflight[T any](cache ports.Cache, ctx context.Context, listKey string, ttl time.Duration, loader func() ([]T, error)) ([]T, error) {
	if v, ok := cacheGet[[]T](cache, ctx, listKey); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(listKey, func() (any, error) {
		if v, ok := cacheGet[[]T](cache, ctx, listKey); ok {
			return *v, nil
		}
		all, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(cache, ctx, listKey, all, ttl)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return all, nil
}

const billingClientsKey = "billing:clients:all"

// CachingBillingClient keeps the full client list for a short TTL so that
// back-to-back reminder runs share one upstream call. Filters are applied on
// the cached list.
type CachingBillingClient struct {
	inner ports.BillingClient
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingBillingClient(inner ports.BillingClient, cache ports.Cache, ttl time.Duration) ports.BillingClient {
	if ttl <= 0 {
		return inner
	}
	return &CachingBillingClient{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingBillingClient) FetchClients(ctx context.Context, filter *billing.ClientFilter) ([]billing.Client, error) {
	all, err := loadFullListWithSingleflight(c.cache, ctx, billingClientsKey, c.ttl, func() ([]billing.Client, error) {
		return c.inner.FetchClients(ctx, nil)
	})
	if err != nil {
		return nil, err
	}
	return filter.Apply(all), nil
}

// Invalidate drops the cached client list.
func (c *CachingBillingClient) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, billingClientsKey)
}

var _ ports.BillingClient = (*CachingBillingClient)(nil)

// Shared singleflight group across caching decorators
var sf singleflight.Group
