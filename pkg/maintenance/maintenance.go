package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"wikid/pkg/logger"
	"wikid/pkg/search"
)

// Start launches the periodic search-index rebuild scheduler if a cron
// expression is configured. An empty expression disables the scheduler.
// Returns a cancel func stopping the goroutine.
func Start(ctx context.Context, idx *search.Index, cronExpr string) (context.CancelFunc, error) {
	if cronExpr == "" {
		logger.Info("maintenance_disabled")
		return func() {}, nil
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("maintenance_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid rebuild cron expression: %s", cronExpr)
	}

	logger.Info("maintenance_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, idx, cronExpr)
	return cancel, nil
}

// runScheduler sleeps until the next cron tick and triggers a full index
// rebuild from the page store, repeating until the context is cancelled.
func runScheduler(ctx context.Context, idx *search.Index, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("maintenance_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if err := idx.Rebuild(); err != nil {
				logger.Error("maintenance_rebuild_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		}
	}
}
