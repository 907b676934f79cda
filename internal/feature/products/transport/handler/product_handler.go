// Package handler はproductsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/feature/products/transport/http/dto"
	"price_backend/internal/feature/products/usecase"
)

// ProductOnboarder は商品の追跡開始ユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ProductOnboarder interface {
	AddProduct(ctx context.Context, url, recipientEmail string) (*entity.Product, error)
}

// PriceSweeper は価格スイープのユースケースを定義します。
type PriceSweeper interface {
	Sweep(ctx context.Context) ([]entity.PriceDropEvent, error)
}

// ProductReader は商品と価格履歴の読み取り操作を定義します。
type ProductReader interface {
	ListAll(ctx context.Context) ([]entity.Product, error)
	PriceHistory(ctx context.Context, productID uint) ([]entity.PriceHistoryEntry, error)
}

// ProductHandler は商品追跡のHTTPリクエストを処理します。
type ProductHandler struct {
	onboarder ProductOnboarder
	sweeper   PriceSweeper
	reader    ProductReader
}

// NewProductHandler はProductHandlerの新しいインスタンスを生成します。
func NewProductHandler(onboarder ProductOnboarder, sweeper PriceSweeper, reader ProductReader) *ProductHandler {
	return &ProductHandler{onboarder: onboarder, sweeper: sweeper, reader: reader}
}

// AddProduct は POST /add_product を処理します。
// - リクエストJSONをAddProductReqにバインド。バリデーションエラー時は400
// - URLが既に追跡中の場合は409
// - ページの取得・抽出に失敗した場合は502
// - 成功時は作成された商品を含めて201
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req dto.AddProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("add product validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}

	product, err := h.onboarder.AddProduct(c.Request.Context(), req.URL, req.RecipientEmail)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProductAlreadyExists):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "product already exists"})
		case errors.Is(err, usecase.ErrFetchFailed):
			slog.Warn("onboarding fetch failed", "url", req.URL, "error", err)
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to fetch product details"})
		default:
			slog.Error("add product failed", "url", req.URL, "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.AddProductResponse{
		Message: "Product added successfully.",
		Product: toProductResponse(*product),
	})
}

// CheckPrices は GET /check_prices を処理し、スイープを1回実行します。
// 一部の商品の更新に失敗しても成功した下落通知は返します（部分失敗は
// errorフィールドと500で伝えます）。
func (h *ProductHandler) CheckPrices(c *gin.Context) {
	events, err := h.sweeper.Sweep(c.Request.Context())

	out := make([]dto.PriceDropResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.PriceDropResponse{
			ProductName: ev.ProductName,
			OldPrice:    ev.OldPrice,
			NewPrice:    ev.NewPrice,
		})
	}

	if err != nil {
		slog.Error("sweep finished with failures", "drops", len(events), "error", err)
		c.JSON(http.StatusInternalServerError, dto.SweepResponse{Notifications: out, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.SweepResponse{Notifications: out})
}

// ListProducts は GET /products を処理し、追跡中の全商品を返します。
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.reader.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("list products failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// GetPriceHistory は GET /products/:id/history を処理します。
// 商品が存在しない場合は404を返します。
func (h *ProductHandler) GetPriceHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid product id"})
		return
	}

	entries, err := h.reader.PriceHistory(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "product not found"})
			return
		}
		slog.Error("price history lookup failed", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	out := make([]dto.PriceHistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.PriceHistoryEntryResponse{Price: e.Price, Timestamp: e.Timestamp})
	}
	c.JSON(http.StatusOK, out)
}

func toProductResponse(p entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		URL:            p.URL,
		CurrentPrice:   p.CurrentPrice,
		Currency:       p.Currency,
		RecipientEmail: p.RecipientEmail,
		AddedAt:        p.AddedAt,
	}
}
