package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/feature/products/usecase"
)

// maxPageBytes は抽出に渡すページ本文の上限サイズです。
// 商品情報はページ先頭に現れることがほとんどで、巨大ページの全文は不要です。
const maxPageBytes = 256 << 10

// ProductExtractor はページHTMLから商品情報を抽出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（PageFetcher）側で定義します。
type ProductExtractor interface {
	ExtractProduct(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error)
}

// PageFetcher は商品ページをHTTPで取得し、抽出器で現在の商品情報に変換します。
type PageFetcher struct {
	client    *http.Client
	extractor ProductExtractor
}

// PageFetcherがPriceFetcherを実装していることをコンパイル時に検証します。
var _ usecase.PriceFetcher = (*PageFetcher)(nil)

// NewPageFetcher は指定されたHTTPクライアントと抽出器でPageFetcherの新しいインスタンスを生成します。
func NewPageFetcher(client *http.Client, extractor ProductExtractor) *PageFetcher {
	return &PageFetcher{client: client, extractor: extractor}
}

// Fetch はURLのページを取得し、商品名・価格・通貨を抽出して返します。
// ネットワーク・HTTPステータス・抽出のどの失敗もエラーとして返し、
// 呼び出し側が「結果なし」として扱います。
func (f *PageFetcher) Fetch(ctx context.Context, url string) (*entity.FetchedPrice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; price-backend/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "url", url, "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: http %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	fetched, err := f.extractor.ExtractProduct(ctx, string(body))
	if err != nil {
		return nil, fmt.Errorf("extract product from %s: %w", url, err)
	}

	fetched.URL = url
	fetched.FetchedAt = time.Now().UTC()
	return fetched, nil
}
