package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeCacheClient struct {
	data map[string]string
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{data: map[string]string{}}
}

func (f *fakeCacheClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeCacheClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCacheClient) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCacheClient) OwnerStoresKey(ownerID string) string {
	return "sl:cache:owner_stores:" + ownerID
}

func (f *fakeCacheClient) StoreCacheKey(storeID string) string {
	return "sl:cache:store:" + storeID
}

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	client := newFakeCacheClient()
	cache := NewCache(client, time.Minute, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	storeID := uuid.New()
	if _, ok := cache.GetOwnerStores(ctx, ownerID); ok {
		t.Fatal("expected cold cache miss")
	}

	list := []StoreDTO{{ID: storeID, OwnerID: ownerID, Domain: "a.example", IsPrimary: true}}
	cache.SetOwnerStores(ctx, ownerID, list)

	cached, ok := cache.GetOwnerStores(ctx, ownerID)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if len(cached) != 1 || cached[0].ID != storeID || !cached[0].IsPrimary {
		t.Fatalf("cached listing mismatch: %+v", cached)
	}

	cache.Invalidate(ctx, ownerID, storeID)
	if _, ok := cache.GetOwnerStores(ctx, ownerID); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestCacheDiscardsCorruptEntries(t *testing.T) {
	client := newFakeCacheClient()
	cache := NewCache(client, time.Minute, nil)
	ctx := context.Background()

	ownerID := uuid.New()
	client.data[client.OwnerStoresKey(ownerID.String())] = "not json"

	if _, ok := cache.GetOwnerStores(ctx, ownerID); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	ownerID := uuid.New()

	if _, ok := cache.GetOwnerStores(ctx, ownerID); ok {
		t.Fatal("nil cache must miss")
	}
	cache.SetOwnerStores(ctx, ownerID, nil)
	cache.Invalidate(ctx, ownerID)
}
