package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"price_backend/internal/app/di"
	"price_backend/internal/app/router"
	"price_backend/internal/app/scheduler"
	producthandler "price_backend/internal/feature/products/transport/handler"
	"price_backend/internal/feature/products/usecase"
	infradb "price_backend/internal/platform/db"
	"price_backend/internal/platform/notify"
	infraredis "price_backend/internal/platform/redis"
	"price_backend/internal/shared/ratelimiter"
)

func main() {
	// .env はローカル開発用。無ければ環境変数をそのまま使う
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	// db
	db := infradb.OpenDB()

	// Redis（任意。無ければキャッシュなしで動作する）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repository
	repo := di.NewProductRepository(db, rdb)

	// 外部コラボレーター
	fetcher, err := di.NewPriceFetcher(ctx)
	if err != nil {
		log.Fatal("init price fetcher:", err)
	}
	notifier := notify.NewEmailNotifier(notify.LoadConfig())
	limiter := ratelimiter.NewRateLimiter(intEnv("FETCH_RATE_LIMIT", 30), time.Minute)

	// Usecase
	onboardUC := usecase.NewOnboardUsecase(repo, fetcher)
	monitorUC := usecase.NewMonitorUsecase(repo, fetcher, notifier, limiter, intEnv("SWEEP_WORKERS", 0))

	// Handler
	productH := producthandler.NewProductHandler(onboardUC, monitorUC, repo)

	// ルータ生成
	r := router.NewRouter(productH)

	// 定期スイープ（SWEEP_INTERVAL=0で無効化、cmd/sweep + 外部cronに委ねる）
	if interval := durationEnv("SWEEP_INTERVAL", time.Hour); interval > 0 {
		go scheduler.Run(ctx, monitorUC, interval)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}

// intEnv は整数の環境変数を読み、未設定・不正な場合はフォールバックを返します。
func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// durationEnv はduration形式（"30m"など）の環境変数を読みます。
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}
