package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"price_backend/internal/feature/products/domain/entity"
	"price_backend/internal/platform/metrics"
	"price_backend/internal/shared/ratelimiter"
)

// DefaultSweepWorkers はスイープの同時実行ワーカー数のデフォルト値です。
const DefaultSweepWorkers = 4

// Notifier は価格下落アラートの送信を抽象化します。
// 送信失敗は呼び出し側でログに記録され、処理は継続されます（ベストエフォート）。
type Notifier interface {
	Notify(ctx context.Context, subject, body, recipient string) error
}

// MonitorUsecase は全追跡商品の価格スイープを実装します。
type MonitorUsecase struct {
	repo     ProductRepository
	fetcher  PriceFetcher
	notifier Notifier
	limiter  ratelimiter.RateLimiterInterface
	workers  int
}

// NewMonitorUsecase はMonitorUsecaseの新しいインスタンスを生成します。
// workersが0以下の場合はDefaultSweepWorkersを使用します。
func NewMonitorUsecase(repo ProductRepository, fetcher PriceFetcher, notifier Notifier,
	limiter ratelimiter.RateLimiterInterface, workers int) *MonitorUsecase {
	if workers <= 0 {
		workers = DefaultSweepWorkers
	}
	return &MonitorUsecase{repo: repo, fetcher: fetcher, notifier: notifier, limiter: limiter, workers: workers}
}

// Sweep は追跡中の全商品の現在価格を再取得し、下落を検出した商品ごとに
// 価格の更新・履歴の追記・通知を行い、検出した下落イベントの一覧を返します。
//
// 各商品は独立して処理されます。1商品の取得失敗はその商品のスキップに
// とどまり、スイープ全体を失敗させません。リポジトリ書き込みの失敗は
// errors.Joinで集約して返しますが、他の商品の処理は継続します。
func (mu *MonitorUsecase) Sweep(ctx context.Context) ([]entity.PriceDropEvent, error) {
	start := time.Now()
	metrics.SweepsTotal.Inc()

	products, err := mu.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	type result struct {
		event *entity.PriceDropEvent
		err   error
	}

	// 各ワーカーは自分の結果だけをチャネルで返し、集約はこのゴルーチンが行う。
	// 共有の可変アキュムレータは持たない。
	results := make(chan result, len(products))
	sem := make(chan struct{}, mu.workers)
	var wg sync.WaitGroup

	launched := 0
	for _, p := range products {
		// キャンセル後は新しい商品を開始しない。処理済みの商品の更新は
		// それぞれ1トランザクションで完結しているので整合性は保たれる。
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		launched++
		go func(p entity.Product) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			ev, err := mu.checkOne(ctx, p)
			results <- result{event: ev, err: err}
		}(p)
	}

	wg.Wait()
	close(results)

	events := make([]entity.PriceDropEvent, 0, launched)
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if r.event != nil {
			events = append(events, *r.event)
		}
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	slog.Info("sweep finished",
		"products", len(products), "drops", len(events), "failures", len(errs),
		"elapsed", time.Since(start).String())

	return events, errors.Join(errs...)
}

// checkOne は1商品のfetch→比較→更新→通知を実行します。
// 下落を適用した場合のみイベントを返します。
func (mu *MonitorUsecase) checkOne(ctx context.Context, p entity.Product) (*entity.PriceDropEvent, error) {
	if mu.limiter != nil {
		mu.limiter.WaitIfNeeded()
	}

	fetched, err := mu.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		// 単一の取得失敗はスイープを中断しない
		slog.Warn("price fetch failed, skipping product", "url", p.URL, "error", err)
		metrics.FetchFailuresTotal.Inc()
		return nil, nil
	}

	// 厳密な下落のみ反映する。同額・値上がりでは価格も履歴も変化しない。
	if fetched.Price >= p.CurrentPrice {
		return nil, nil
	}

	if err := mu.repo.ApplyPriceDrop(ctx, p.ID, p.CurrentPrice, fetched.Price, fetched.FetchedAt); err != nil {
		if errors.Is(err, ErrStalePrice) {
			// 並行スイープが先に更新した。今回の観測は破棄する。
			slog.Info("concurrent sweep already updated price, skipping", "url", p.URL)
			return nil, nil
		}
		return nil, fmt.Errorf("apply price drop for %q: %w", p.URL, err)
	}
	metrics.PriceDropsTotal.Inc()

	subject := fmt.Sprintf("Price Drop Alert for %s", p.Name)
	body := dropAlertBody(p.Name, p.CurrentPrice, fetched.Price, p.Currency, p.URL)
	if err := mu.notifier.Notify(ctx, subject, body, p.RecipientEmail); err != nil {
		// 通知失敗は確定済みの価格更新を巻き戻さない
		slog.Error("drop notification failed", "recipient", p.RecipientEmail, "url", p.URL, "error", err)
		metrics.NotifyFailuresTotal.Inc()
	}

	return &entity.PriceDropEvent{
		ProductName: p.Name,
		OldPrice:    p.CurrentPrice,
		NewPrice:    fetched.Price,
	}, nil
}

// dropAlertBody は価格下落アラートの本文を組み立てます。
func dropAlertBody(name string, oldPrice, newPrice float64, currency, url string) string {
	return fmt.Sprintf(
		"Good news! The price of %q has dropped!\n"+
			"Old Price: %.2f %s\n"+
			"New Price: %.2f %s\n"+
			"Link: %s\n\n"+
			"Visit the link to grab the deal!",
		name, oldPrice, currency, newPrice, currency, url)
}
