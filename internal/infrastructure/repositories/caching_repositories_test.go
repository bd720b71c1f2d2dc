package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/test/mocks"
)

func sampleClients() []billing.Client {
	return []billing.Client{
		{ID: 1, FirstName: "Ann", HasOverdueInvoice: true},
		{ID: 2, FirstName: "Bob"},
	}
}

func TestCachingBillingClient_CachesFullList(t *testing.T) {
	inner := &mocks.BillingClientMock{Clients: sampleClients()}
	cache := mocks.NewCacheMock()
	c := NewCachingBillingClient(inner, cache, time.Minute)

	overdue := true
	got, err := c.FetchClients(context.Background(), &billing.ClientFilter{HasOverdueInvoice: &overdue})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	all, err := c.FetchClients(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1, inner.CallCount())

	require.NoError(t, c.(*CachingBillingClient).Invalidate(context.Background()))
	_, err = c.FetchClients(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachingBillingClient_ConcurrentCallsShareLoad(t *testing.T) {
	inner := &mocks.BillingClientMock{Clients: sampleClients(), Delay: 20 * time.Millisecond}
	c := NewCachingBillingClient(inner, mocks.NewCacheMock(), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.FetchClients(context.Background(), nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inner.CallCount())
}

func TestCachingBillingClient_CacheFailureFallsThrough(t *testing.T) {
	inner := &mocks.BillingClientMock{Clients: sampleClients()}
	cache := mocks.NewCacheMock()
	cache.Err = errors.New("redis down")
	c := NewCachingBillingClient(inner, cache, time.Minute)

	got, err := c.FetchClients(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCachingBillingClient_ErrorNotCached(t *testing.T) {
	inner := &mocks.BillingClientMock{Err: errors.New("upstream 500")}
	cache := mocks.NewCacheMock()
	c := NewCachingBillingClient(inner, cache, time.Minute)

	_, err := c.FetchClients(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, cache.Data)
}

func TestNewCachingBillingClient_ZeroTTLReturnsInner(t *testing.T) {
	inner := &mocks.BillingClientMock{}
	assert.Same(t, inner, NewCachingBillingClient(inner, mocks.NewCacheMock(), 0))
}
