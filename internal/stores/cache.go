package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

type cacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	OwnerStoresKey(ownerID string) string
	StoreCacheKey(storeID string) string
}

// Cache is a read-through layer over the owner store listing. The database
// stays authoritative; every miss or decode failure falls through to it, and
// every registry write invalidates the owner's entry.
type Cache struct {
	client cacheClient
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCache wraps the redis client for store listings. A nil client yields a
// no-op cache.
func NewCache(client cacheClient, ttl time.Duration, logg *logger.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logg: logg}
}

// GetOwnerStores returns the cached listing for the owner, if present.
func (c *Cache) GetOwnerStores(ctx context.Context, ownerID uuid.UUID) ([]StoreDTO, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.client.OwnerStoresKey(ownerID.String()))
	if err != nil {
		return nil, false
	}
	var cached []StoreDTO
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "discarding undecodable store cache entry")
		}
		return nil, false
	}
	return cached, true
}

// SetOwnerStores caches the listing for the owner.
func (c *Cache) SetOwnerStores(ctx context.Context, ownerID uuid.UUID, list []StoreDTO) {
	if c == nil {
		return
	}
	buf, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.OwnerStoresKey(ownerID.String()), string(buf), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "store cache write failed")
	}
}

// Invalidate drops the cached entries touched by a registry write.
func (c *Cache) Invalidate(ctx context.Context, ownerID uuid.UUID, storeIDs ...uuid.UUID) {
	if c == nil {
		return
	}
	keys := []string{c.client.OwnerStoresKey(ownerID.String())}
	for _, id := range storeIDs {
		keys = append(keys, c.client.StoreCacheKey(id.String()))
	}
	if err := c.client.Del(ctx, keys...); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "store cache invalidation failed")
	}
}
