// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/feature/products/usecase"
)

// CachingProductRepository decorates a ProductRepository with Redis caching
// for URL lookups. Onboarding checks every submitted URL against the store,
// so FindByURL is the hot read; list and history queries go straight through.
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates a ProductRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByURL retrieves a product, checking cache first then falling back to the database.
// Not-found results are not cached: a freshly onboarded product must be visible
// to the next duplicate check.
func (c *CachingProductRepository) FindByURL(ctx context.Context, url string) (*entity.Product, error) {
	if c.rdb == nil {
		return c.inner.FindByURL(ctx, url)
	}

	key := c.urlKey(url)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Product
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed cache write must not fail the lookup
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// ListAll returns all tracked products, uncached.
func (c *CachingProductRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	return c.inner.ListAll(ctx)
}

// Create persists the product and invalidates the cache entry for its URL.
func (c *CachingProductRepository) Create(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	created, err := c.inner.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, c.urlKey(created.URL)).Err()
	}
	return created, nil
}

// ApplyPriceDrop applies the update and invalidates cached lookups.
// Only the product ID is known here, so the whole namespace is swept.
func (c *CachingProductRepository) ApplyPriceDrop(ctx context.Context, productID uint, oldPrice, newPrice float64, observedAt time.Time) error {
	if err := c.inner.ApplyPriceDrop(ctx, productID, oldPrice, newPrice, observedAt); err != nil {
		return err
	}
	if c.rdb != nil {
		_ = c.deleteByPattern(ctx, c.namespace+":*")
	}
	return nil
}

// PriceHistory returns the product's price history, uncached.
func (c *CachingProductRepository) PriceHistory(ctx context.Context, productID uint) ([]entity.PriceHistoryEntry, error) {
	return c.inner.PriceHistory(ctx, productID)
}

// urlKey generates the cache key for a URL lookup.
func (c *CachingProductRepository) urlKey(url string) string {
	return fmt.Sprintf("%s:url:%s", c.namespace, safe(url))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingProductRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
