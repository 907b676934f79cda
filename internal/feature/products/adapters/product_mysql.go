// Package adapters はproductsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/feature/products/usecase"
)

// productMySQL はProductRepositoryインターフェースのMySQL実装です。
// GORMを使用してデータベース操作を行います。
type productMySQL struct {
	db *gorm.DB
}

// productMySQLがProductRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ProductRepository = (*productMySQL)(nil)

// NewProductRepository は指定されたgorm.DB接続でproductMySQLの新しいインスタンスを生成します。
func NewProductRepository(db *gorm.DB) *productMySQL {
	return &productMySQL{db: db}
}

type ProductModel struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"size:255;not null"`
	URL            string    `gorm:"size:500;not null;uniqueIndex"`
	CurrentPrice   float64   `gorm:"not null"`
	Currency       string    `gorm:"size:3;not null;default:USD"`
	RecipientEmail string    `gorm:"size:255;not null"`
	AddedAt        time.Time `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

type PriceHistoryModel struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"not null;index"`
	Price     float64   `gorm:"not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (PriceHistoryModel) TableName() string {
	return "price_history"
}

func toModel(e *entity.Product) ProductModel {
	return ProductModel{
		ID:             e.ID,
		Name:           e.Name,
		URL:            e.URL,
		CurrentPrice:   e.CurrentPrice,
		Currency:       e.Currency,
		RecipientEmail: e.RecipientEmail,
		AddedAt:        e.AddedAt,
	}
}

func toEntity(m ProductModel) *entity.Product {
	return &entity.Product{
		ID:             m.ID,
		Name:           m.Name,
		URL:            m.URL,
		CurrentPrice:   m.CurrentPrice,
		Currency:       m.Currency,
		RecipientEmail: m.RecipientEmail,
		AddedAt:        m.AddedAt,
	}
}

// isDuplicateKey はユニーク制約違反かどうかを判定します。
// MySQLエラー1062に加え、GORMの翻訳済みエラー（SQLite等）も確認します。
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FindByURL はURLで商品を取得します。
// 商品が存在しない場合、usecase.ErrProductNotFoundを返します。
func (r *productMySQL) FindByURL(ctx context.Context, url string) (*entity.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return toEntity(m), nil
}

// ListAll は追跡中の全商品を返します。
func (r *productMySQL) ListAll(ctx context.Context) ([]entity.Product, error) {
	var rows []ProductModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toEntity(m))
	}
	return out, nil
}

// Create は商品と最初の価格履歴エントリを1つのトランザクションで作成します。
// どちらかの書き込みが失敗した場合、両方ともロールバックされます。
// URLが既に存在する場合、usecase.ErrProductAlreadyExistsを返します。
func (r *productMySQL) Create(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	m := toModel(p)
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			if isDuplicateKey(err) {
				return usecase.ErrProductAlreadyExists
			}
			return err
		}
		return tx.Create(&PriceHistoryModel{
			ProductID: m.ID,
			Price:     m.CurrentPrice,
			Timestamp: m.AddedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return toEntity(m), nil
}

// ApplyPriceDrop は商品の現在価格を更新し、同じトランザクションで価格履歴を1件追記します。
// 更新は読み取り時の価格（oldPrice）を条件とする楽観的更新です。
// 条件に一致する行が無い場合、並行スイープとの競合としてusecase.ErrStalePriceを返します。
func (r *productMySQL) ApplyPriceDrop(ctx context.Context, productID uint, oldPrice, newPrice float64, observedAt time.Time) error {
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ProductModel{}).
			Where("id = ? AND current_price = ?", productID, oldPrice).
			Update("current_price", newPrice)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&ProductModel{}).Where("id = ?", productID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return usecase.ErrProductNotFound
			}
			return usecase.ErrStalePrice
		}
		return tx.Create(&PriceHistoryModel{
			ProductID: productID,
			Price:     newPrice,
			Timestamp: observedAt,
		}).Error
	})
}

// PriceHistory は商品の価格履歴を追記順（古い順）に返します。
// 追記専用テーブルなので自動採番のidが追記順そのものです。timestampで
// 並べると、過去のobservedAtを持つエントリが先行する行の前に割り込みます。
// 商品が存在しない場合、usecase.ErrProductNotFoundを返します。
func (r *productMySQL) PriceHistory(ctx context.Context, productID uint) ([]entity.PriceHistoryEntry, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, usecase.ErrProductNotFound
	}

	var rows []PriceHistoryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.PriceHistoryEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PriceHistoryEntry{
			ID:        m.ID,
			ProductID: m.ProductID,
			Price:     m.Price,
			Timestamp: m.Timestamp,
		})
	}
	return out, nil
}
