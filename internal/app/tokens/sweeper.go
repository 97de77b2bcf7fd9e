package tokens

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/clock"
)

// RunSweeper calls SweepExpired every interval until ctx is done. A
// non-positive interval defaults to half the ledger's TTL. It blocks;
// run it in its own goroutine.
func RunSweeper(ctx context.Context, l *Ledger, c clock.Clock, interval time.Duration) {
	if interval <= 0 {
		interval = l.TTL() / 2
	}
	if c == nil {
		c = clock.Real()
	}
	ticker := c.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.tokens").Dur("interval", interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.tokens").Msg("sweeper stopped")
			return
		case <-ticker.C:
			if removed := l.SweepExpired(); removed > 0 {
				log.Debug().Str("module", "app.tokens").Int("removed", removed).Int("remaining", l.Len()).Msg("swept tokens")
			}
		}
	}
}
