package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"price_backend/internal/feature/products/adapters"
	"price_backend/internal/feature/products/usecase"
	"price_backend/internal/platform/cache"
)

// NewProductRepository creates a ProductRepository implementation.
// If Redis is available, URL lookups are served through a caching decorator.
// Otherwise the plain database repository is returned.
func NewProductRepository(db *gorm.DB, rdb *redis.Client) usecase.ProductRepository {
	repo := adapters.NewProductRepository(db)
	if rdb != nil {
		return cache.NewCachingProductRepository(rdb, 5*time.Minute, repo, "products")
	}
	return repo
}
