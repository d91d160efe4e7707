package menu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recently read menu items in Redis so repeated cart pricing
// within a short window does not hammer the catalog tables. Staleness up to
// the TTL is acceptable.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func itemCacheKey(id string) string {
	return "menu:item:" + id
}

// GetItem reports whether the item was cached and decodes it into dst.
func (c *Cache) GetItem(ctx context.Context, id string, dst *MenuItem) (bool, error) {
	if c == nil || c.client == nil || id == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, itemCacheKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetItem stores the item with the configured TTL.
func (c *Cache) SetItem(ctx context.Context, item MenuItem) error {
	if c == nil || c.client == nil || item.ID == "" || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemCacheKey(item.ID), data, c.ttl).Err()
}
