package usecase

import (
	"context"
	"time"

	"price_backend/internal/feature/products/domain/entity"
)

// ProductRepository は商品と価格履歴の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ProductRepository interface {
	// FindByURL はURLで商品を取得します。
	// 商品が存在しない場合、ErrProductNotFoundを返します。
	FindByURL(ctx context.Context, url string) (*entity.Product, error)

	// ListAll は追跡中の全商品を返します。
	ListAll(ctx context.Context) ([]entity.Product, error)

	// Create は商品と最初の価格履歴エントリを1つのトランザクションで作成し、
	// IDとAddedAtが設定された商品を返します。
	// URLが既に存在する場合、ErrProductAlreadyExistsを返します。
	Create(ctx context.Context, p *entity.Product) (*entity.Product, error)

	// ApplyPriceDrop は商品の現在価格を更新し、同じトランザクションで
	// 価格履歴エントリを1件追加します。更新は読み取り時の価格を条件とする
	// 楽観的更新で、別のスイープが先に更新していた場合はErrStalePriceを返します。
	ApplyPriceDrop(ctx context.Context, productID uint, oldPrice, newPrice float64, observedAt time.Time) error

	// PriceHistory は商品の価格履歴を古い順に返します。
	// 商品が存在しない場合、ErrProductNotFoundを返します。
	PriceHistory(ctx context.Context, productID uint) ([]entity.PriceHistoryEntry, error)
}
