// Package scheduler runs periodic price sweeps.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"price_backend/internal/feature/products/domain/entity"
)

// DefaultInterval is used when no sweep interval is configured.
const DefaultInterval = time.Hour

// Sweeper は1回の価格スイープを実行するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（scheduler）側で定義します。
type Sweeper interface {
	Sweep(ctx context.Context) ([]entity.PriceDropEvent, error)
}

// Run はintervalごとにスイープを実行し、ctxがキャンセルされるまでブロックします。
// 起動直後にまず1回実行します。スイープの部分失敗はログに残すだけで、
// ループは継続します。
func Run(ctx context.Context, sweeper Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("sweep scheduler started", "interval", interval.String())

	runOnce(ctx, sweeper)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep scheduler stopping")
			return
		case <-ticker.C:
			runOnce(ctx, sweeper)
		}
	}
}

func runOnce(ctx context.Context, sweeper Sweeper) {
	events, err := sweeper.Sweep(ctx)
	if err != nil {
		slog.Error("scheduled sweep had failures", "drops", len(events), "error", err)
		return
	}
	if len(events) > 0 {
		slog.Info("scheduled sweep detected drops", "drops", len(events))
	}
}
