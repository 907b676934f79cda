// Package gemini はGoogle Gemini APIを使用した商品情報抽出器を提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/platform/extract"
)

// extractPromptTemplate はページHTMLから商品情報をJSONで抜き出すプロンプトです。
// レスポンスはJSONオブジェクトのみを想定し、コードフェンス付きでも受理します。
const extractPromptTemplate = `Extract the product offer from the following web page HTML.
Respond with ONLY a JSON object of this exact shape:
{"name": "<product name>", "price": <current price as number>, "currency": "<3-letter currency code such as USD>"}
If the page does not show a product with a price, respond with {"name": "", "price": -1, "currency": ""}.

HTML:
%s`

// GeminiExtractor はGemini APIでページHTMLから商品名・価格・通貨を抽出します。
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// GeminiExtractorがProductExtractorを実装していることをコンパイル時に検証します。
var _ extract.ProductExtractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor はADCを使用してGeminiExtractorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiExtractor(ctx context.Context, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// ExtractProduct はページHTMLをGeminiに渡し、商品情報を抽出します。
func (g *GeminiExtractor) ExtractProduct(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
	prompt := fmt.Sprintf(extractPromptTemplate, pageHTML)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}
	return parseExtraction(resp.Text())
}

// parseExtraction はモデルの出力をパースし、商品情報として妥当か検証します。
func parseExtraction(text string) (*entity.FetchedPrice, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse extraction %q: %w", text, err)
	}

	if out.Name == "" || out.Price < 0 {
		return nil, fmt.Errorf("page does not contain a priced product")
	}
	currency := strings.ToUpper(strings.TrimSpace(out.Currency))
	if len(currency) != 3 {
		currency = ""
	}

	return &entity.FetchedPrice{
		Name:     out.Name,
		Price:    out.Price,
		Currency: currency,
	}, nil
}
