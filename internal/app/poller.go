package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// refresher is the slice of state.Store the poller needs.
type refresher interface {
	Refresh(ctx context.Context) error
}

// StartPoller re-runs the store's current list fetch every interval until ctx
// is cancelled. A non-positive interval disables polling. It returns
// immediately.
func StartPoller(ctx context.Context, store refresher, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("background refresh enabled", zap.Duration("interval", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			// The store logs and records failures itself.
			_ = store.Refresh(ctx)
		}
	}()
}
