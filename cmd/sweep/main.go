package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"price_backend/internal/app/di"
	"price_backend/internal/feature/products/adapters"
	"price_backend/internal/feature/products/usecase"
	infradb "price_backend/internal/platform/db"
	"price_backend/internal/platform/notify"
	"price_backend/internal/shared/ratelimiter"
)

// 外部cronから1回のスイープを実行するバッチエントリポイント。
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	db := infradb.OpenDB()
	repo := adapters.NewProductRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fetcher, err := di.NewPriceFetcher(ctx)
	if err != nil {
		log.Fatal("init price fetcher:", err)
	}
	notifier := notify.NewEmailNotifier(notify.LoadConfig())
	limiter := ratelimiter.NewRateLimiter(30, time.Minute)

	uc := usecase.NewMonitorUsecase(repo, fetcher, notifier, limiter, 0)

	events, err := uc.Sweep(ctx)
	if err != nil {
		log.Printf("sweep finished with failures: %v", err)
	}
	log.Printf("sweep ok: %d price drops", len(events))
}
