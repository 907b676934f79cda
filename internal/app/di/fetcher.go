// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"

	"price_backend/internal/feature/products/usecase"
	"price_backend/internal/platform/extract"
	"price_backend/internal/platform/extract/gemini"
	infrahttp "price_backend/internal/platform/http"
)

// NewPriceFetcher creates a fully configured page fetcher:
// a timeout-bounded HTTP client plus a Gemini-backed product extractor.
func NewPriceFetcher(ctx context.Context) (usecase.PriceFetcher, error) {
	cfg := extract.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	extractor, err := gemini.NewGeminiExtractor(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	return extract.NewPageFetcher(httpClient, extractor), nil
}
