package cli

import (
	"context"
	"time"
)

const pingTimeout = 3 * time.Second

// StartOnlineStatusWatcher pings the backend every interval and switches the
// App between online and offline mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.pinger.Ping(pctx)
			cancel()

			if err != nil {
				a.log.Debug(ctx, "backend ping failed", "error", err)
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
