package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/feature/products/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// TranslateError is enabled so unique violations map to gorm.ErrDuplicatedKey,
// mirroring the MySQL 1062 mapping in production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&ProductModel{}, &PriceHistoryModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

// seedProduct creates a tracked product with its initial history entry.
func seedProduct(t *testing.T, repo *productMySQL, url string, price float64) *entity.Product {
	t.Helper()

	created, err := repo.Create(context.Background(), &entity.Product{
		Name:           "Test Shirt",
		URL:            url,
		CurrentPrice:   price,
		Currency:       "USD",
		RecipientEmail: "shopper@example.com",
	})
	require.NoError(t, err, "failed to seed product")

	return created
}

func TestNewProductRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewProductRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestProductMySQL_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		product      entity.Product
		setupFunc    func(t *testing.T, repo *productMySQL)
		wantErr      error
		validateFunc func(t *testing.T, db *gorm.DB, created *entity.Product)
	}{
		{
			name: "success: assigns id, added_at and writes exactly one history entry",
			product: entity.Product{
				Name:           "Test Shirt",
				URL:            "https://shop.example.com/shirt",
				CurrentPrice:   49.99,
				Currency:       "USD",
				RecipientEmail: "shopper@example.com",
			},
			validateFunc: func(t *testing.T, db *gorm.DB, created *entity.Product) {
				assert.NotZero(t, created.ID, "id should be assigned")
				assert.False(t, created.AddedAt.IsZero(), "added_at should be set")

				var histories []PriceHistoryModel
				require.NoError(t, db.Where("product_id = ?", created.ID).Find(&histories).Error)
				require.Len(t, histories, 1, "exactly one initial history entry")
				assert.Equal(t, 49.99, histories[0].Price, "initial entry carries the onboarding price")
			},
		},
		{
			name: "failure: duplicate url",
			product: entity.Product{
				Name:           "Same Shirt",
				URL:            "https://shop.example.com/shirt",
				CurrentPrice:   39.99,
				Currency:       "USD",
				RecipientEmail: "other@example.com",
			},
			setupFunc: func(t *testing.T, repo *productMySQL) {
				seedProduct(t, repo, "https://shop.example.com/shirt", 49.99)
			},
			wantErr: usecase.ErrProductAlreadyExists,
			validateFunc: func(t *testing.T, db *gorm.DB, _ *entity.Product) {
				var products int64
				db.Model(&ProductModel{}).Count(&products)
				assert.Equal(t, int64(1), products, "only the first product should exist")

				var histories int64
				db.Model(&PriceHistoryModel{}).Count(&histories)
				assert.Equal(t, int64(1), histories, "only the first history entry should exist")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewProductRepository(db)

			if tt.setupFunc != nil {
				tt.setupFunc(t, repo)
			}

			created, err := repo.Create(context.Background(), &tt.product)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, db, created)
			}
		})
	}
}

func TestProductMySQL_FindByURL(t *testing.T) {
	t.Parallel()

	t.Run("success: returns tracked product", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewProductRepository(db)
		seeded := seedProduct(t, repo, "https://shop.example.com/shirt", 49.99)

		found, err := repo.FindByURL(context.Background(), "https://shop.example.com/shirt")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, found.ID)
		assert.Equal(t, "Test Shirt", found.Name)
		assert.Equal(t, 49.99, found.CurrentPrice)
		assert.Equal(t, "USD", found.Currency)
		assert.Equal(t, "shopper@example.com", found.RecipientEmail)
	})

	t.Run("failure: unknown url", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewProductRepository(db)

		_, err := repo.FindByURL(context.Background(), "https://shop.example.com/unknown")
		assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	})
}

func TestProductMySQL_ListAll(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewProductRepository(db)

	assert.Empty(t, mustListAll(t, repo), "no products tracked yet")

	seedProduct(t, repo, "https://shop.example.com/a", 10)
	seedProduct(t, repo, "https://shop.example.com/b", 20)

	products := mustListAll(t, repo)
	require.Len(t, products, 2)
	assert.Equal(t, "https://shop.example.com/a", products[0].URL)
	assert.Equal(t, "https://shop.example.com/b", products[1].URL)
}

func mustListAll(t *testing.T, repo *productMySQL) []entity.Product {
	t.Helper()
	products, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	return products
}

func TestProductMySQL_ApplyPriceDrop(t *testing.T) {
	t.Parallel()

	observedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		oldPrice     float64
		newPrice     float64
		wantErr      error
		validateFunc func(t *testing.T, db *gorm.DB, productID uint)
	}{
		{
			name:     "success: updates price and appends one history entry",
			oldPrice: 50,
			newPrice: 40,
			validateFunc: func(t *testing.T, db *gorm.DB, productID uint) {
				var m ProductModel
				require.NoError(t, db.First(&m, productID).Error)
				assert.Equal(t, 40.0, m.CurrentPrice, "current_price should be lowered")

				var histories []PriceHistoryModel
				require.NoError(t, db.Where("product_id = ?", productID).Order("id ASC").Find(&histories).Error)
				require.Len(t, histories, 2, "initial entry plus the drop entry")
				assert.Equal(t, 50.0, histories[0].Price, "initial entry untouched")
				assert.Equal(t, 40.0, histories[1].Price)
				assert.Equal(t, observedAt.Unix(), histories[1].Timestamp.Unix())
			},
		},
		{
			name:     "failure: stale old price leaves state untouched",
			oldPrice: 45, // 保存されている価格は50
			newPrice: 40,
			wantErr:  usecase.ErrStalePrice,
			validateFunc: func(t *testing.T, db *gorm.DB, productID uint) {
				var m ProductModel
				require.NoError(t, db.First(&m, productID).Error)
				assert.Equal(t, 50.0, m.CurrentPrice, "price should be unchanged")

				var histories int64
				db.Model(&PriceHistoryModel{}).Where("product_id = ?", productID).Count(&histories)
				assert.Equal(t, int64(1), histories, "no history should be appended")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewProductRepository(db)
			seeded := seedProduct(t, repo, "https://shop.example.com/shirt", 50)

			err := repo.ApplyPriceDrop(context.Background(), seeded.ID, tt.oldPrice, tt.newPrice, observedAt)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, db, seeded.ID)
			}
		})
	}
}

func TestProductMySQL_ApplyPriceDrop_UnknownProduct(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewProductRepository(db)

	err := repo.ApplyPriceDrop(context.Background(), 999, 50, 40, time.Now())
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductMySQL_PriceHistory(t *testing.T) {
	t.Parallel()

	t.Run("success: entries in insertion order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewProductRepository(db)
		seeded := seedProduct(t, repo, "https://shop.example.com/shirt", 50)

		require.NoError(t, repo.ApplyPriceDrop(context.Background(), seeded.ID, 50, 45, seeded.AddedAt.Add(time.Hour)))
		require.NoError(t, repo.ApplyPriceDrop(context.Background(), seeded.ID, 45, 40, seeded.AddedAt.Add(2*time.Hour)))

		entries, err := repo.PriceHistory(context.Background(), seeded.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, 50.0, entries[0].Price)
		assert.Equal(t, 45.0, entries[1].Price)
		assert.Equal(t, 40.0, entries[2].Price)
		for _, e := range entries {
			assert.Equal(t, seeded.ID, e.ProductID)
		}
	})

	t.Run("success: backdated observation stays in insertion order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewProductRepository(db)
		seeded := seedProduct(t, repo, "https://shop.example.com/shirt", 50)

		// observedAtが初期エントリより過去でも、履歴は追記された順のまま
		backdated := seeded.AddedAt.Add(-48 * time.Hour)
		require.NoError(t, repo.ApplyPriceDrop(context.Background(), seeded.ID, 50, 45, backdated))

		entries, err := repo.PriceHistory(context.Background(), seeded.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 50.0, entries[0].Price, "initial entry stays first")
		assert.Equal(t, 45.0, entries[1].Price)
		assert.Equal(t, backdated.Unix(), entries[1].Timestamp.Unix())
	})

	t.Run("failure: unknown product", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewProductRepository(db)

		_, err := repo.PriceHistory(context.Background(), 42)
		assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	})
}
