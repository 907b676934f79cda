package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	producthandler "price_backend/internal/feature/products/transport/handler"
	"price_backend/internal/platform/http/handler"
)

// NewRouter は全エンドポイントを登録したginルーターを生成します。
func NewRouter(products *producthandler.ProductHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)
	// Prometheusメトリクス
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 商品の追跡開始
	r.POST("/add_product", products.AddProduct)
	// オンデマンドの価格スイープ
	r.GET("/check_prices", products.CheckPrices)
	// 追跡中の商品一覧
	r.GET("/products", products.ListProducts)
	// 商品の価格履歴
	r.GET("/products/:id/history", products.GetPriceHistory)

	return r
}
