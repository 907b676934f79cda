package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"price_backend/internal/feature/products/adapters"
)

// Config holds database connection settings.
type Config struct {
	Driver   string // "mysql" (default) or "postgres"
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	// InstanceName is the Cloud SQL instance connection name. When set,
	// the MySQL DSN uses the Cloud SQL Unix socket instead of TCP.
	InstanceName string
}

// LoadConfigFromEnv loads database configuration from environment variables.
func LoadConfigFromEnv() Config {
	return Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN builds the DSN string for the configured driver.
func BuildDSN(cfg Config) string {
	if cfg.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	}
	if cfg.InstanceName != "" {
		// Cloud SQL (Unix socket)
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// OpenFunc opens a gorm connection for a DSN. Injected for testing.
type OpenFunc func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は接続に成功するかtimeoutに達するまで3秒間隔でリトライします。
// 起動直後はDBコンテナの準備待ちで失敗することがあるためです。
func ConnectWithRetry(dsn string, timeout time.Duration, open OpenFunc) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}
}

// OpenDB は環境変数の設定でデータベースに接続します。
// RUN_MIGRATIONS=true の場合はスキーマを自動マイグレーションします。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()
	dsn := BuildDSN(cfg)

	open := func(dsn string) (*gorm.DB, error) {
		var dialector gorm.Dialector
		if cfg.Driver == "postgres" {
			dialector = gpostgres.Open(dsn)
		} else {
			dialector = gmysql.Open(dsn)
		}
		return gorm.Open(dialector, &gorm.Config{TranslateError: true})
	}

	db, err := ConnectWithRetry(dsn, 60*time.Second, open)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&adapters.ProductModel{},
			&adapters.PriceHistoryModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
