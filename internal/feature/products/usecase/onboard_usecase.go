package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"price_backend/internal/feature/products/domain/entity"
)

// DefaultCurrency は取得結果に通貨コードが無い場合に使用される通貨です。
const DefaultCurrency = "USD"

// plausibleEmail は通知先アドレスに許可される大まかなパターンです。
// 厳密な検証はトランスポート層（ginのbindingタグ）が担当します。
var plausibleEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PriceFetcher は商品ページから現在の商品情報を取得するインターフェースです。
// 外部の抽出実装（HTTP取得 + LLM抽出）を抽象化します。
// 取得に失敗した場合はエラーを返し、呼び出し側が「結果なし」として扱います。
type PriceFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.FetchedPrice, error)
}

// OnboardUsecase は新しい商品の追跡開始（オンボーディング）を実装します。
type OnboardUsecase struct {
	repo    ProductRepository
	fetcher PriceFetcher
}

// NewOnboardUsecase はOnboardUsecaseの新しいインスタンスを生成します。
func NewOnboardUsecase(repo ProductRepository, fetcher PriceFetcher) *OnboardUsecase {
	return &OnboardUsecase{repo: repo, fetcher: fetcher}
}

// AddProduct はURLの商品を追跡対象に追加します。
//
// 処理順序は固定です:
//  1. URLが既に追跡されていないか確認（外部呼び出しの無駄を避けるためfetchより先）
//  2. PriceFetcherで現在の商品名・価格・通貨を取得
//  3. 商品と最初の価格履歴エントリを1トランザクションで作成
//
// 重複時はErrProductAlreadyExists、取得失敗時はErrFetchFailedを返します。
func (ou *OnboardUsecase) AddProduct(ctx context.Context, url, recipientEmail string) (*entity.Product, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("url is required")
	}
	if !plausibleEmail.MatchString(recipientEmail) {
		return nil, fmt.Errorf("invalid recipient email %q", recipientEmail)
	}

	if _, err := ou.repo.FindByURL(ctx, url); err == nil {
		return nil, ErrProductAlreadyExists
	} else if !errors.Is(err, ErrProductNotFound) {
		return nil, fmt.Errorf("lookup product by url: %w", err)
	}

	fetched, err := ou.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	currency := fetched.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	created, err := ou.repo.Create(ctx, &entity.Product{
		Name:           fetched.Name,
		URL:            url,
		CurrentPrice:   fetched.Price,
		Currency:       currency,
		RecipientEmail: recipientEmail,
		AddedAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}
