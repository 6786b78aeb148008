package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/redis/go-redis/v9"

	"storefront/internal/model"
	"storefront/pkg/log"
)

// ViewCache is a two-tier read cache for materialized baskets: a local
// in-process tier backed by bigcache and a shared Redis tier. Reads fall
// through local -> Redis -> miss; every basket mutation invalidates both
// tiers for the owning buyer.
type ViewCache struct {
	local *bigcache.BigCache
	redis *redis.Client
	ttl   time.Duration
}

// NewViewCache creates a basket view cache
func NewViewCache(redisClient *redis.Client, ttl time.Duration) (*ViewCache, error) {
	localConfig := bigcache.DefaultConfig(ttl)
	localConfig.CleanWindow = time.Minute

	local, err := bigcache.New(context.Background(), localConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create local basket cache: %w", err)
	}

	return &ViewCache{
		local: local,
		redis: redisClient,
		ttl:   ttl,
	}, nil
}

// cacheKey builds the cache key for a buyer's basket view
func cacheKey(buyerID string) string {
	return "basket:view:" + buyerID
}

// Get returns the cached basket view for the buyer, or (nil, false)
func (c *ViewCache) Get(ctx context.Context, buyerID string) (*model.Basket, bool) {
	key := cacheKey(buyerID)

	if data, err := c.local.Get(key); err == nil {
		var basket model.Basket
		if err := json.Unmarshal(data, &basket); err == nil {
			return &basket, true
		}
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithFields(map[string]interface{}{
				"buyer_id": buyerID,
				"error":    err.Error(),
			}).Warn("Basket cache read failed")
		}
		return nil, false
	}

	var basket model.Basket
	if err := json.Unmarshal(data, &basket); err != nil {
		return nil, false
	}

	// Promote to the local tier
	_ = c.local.Set(key, data)

	return &basket, true
}

// Set stores the basket view in both tiers
func (c *ViewCache) Set(ctx context.Context, basket *model.Basket) {
	data, err := json.Marshal(basket)
	if err != nil {
		return
	}

	key := cacheKey(basket.BuyerID)
	_ = c.local.Set(key, data)

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithFields(map[string]interface{}{
			"buyer_id": basket.BuyerID,
			"error":    err.Error(),
		}).Warn("Basket cache write failed")
	}
}

// Invalidate drops the buyer's basket view from both tiers
func (c *ViewCache) Invalidate(ctx context.Context, buyerID string) {
	key := cacheKey(buyerID)
	_ = c.local.Delete(key)

	if err := c.redis.Del(ctx, key).Err(); err != nil {
		log.WithFields(map[string]interface{}{
			"buyer_id": buyerID,
			"error":    err.Error(),
		}).Warn("Basket cache invalidation failed")
	}
}
