package http

import (
	"context"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/clock"
)

// JoinRateLimiter is a sliding-window limiter keyed by caller address.
type JoinRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	clock    clock.Clock
}

func NewJoinRateLimiter(limit int, interval time.Duration, c clock.Clock) *JoinRateLimiter {
	if c == nil {
		c = clock.Real()
	}
	return &JoinRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		clock:    c,
	}
}

// Allow records an attempt for key and reports whether it is within
// the limit. Rejected attempts are not recorded.
func (rl *JoinRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	fresh := rl.fresh(key, now)
	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}
	rl.history[key] = append(fresh, now)
	return true
}

// Prune drops keys with no attempts inside the window.
func (rl *JoinRateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	removed := 0
	for key := range rl.history {
		if fresh := rl.fresh(key, now); len(fresh) == 0 {
			delete(rl.history, key)
			removed++
		} else {
			rl.history[key] = fresh
		}
	}
	return removed
}

func (rl *JoinRateLimiter) fresh(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.interval)
	attempts := rl.history[key]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

// Run prunes idle keys every interval until ctx is done.
func (rl *JoinRateLimiter) Run(ctx context.Context) {
	ticker := rl.clock.NewTicker(rl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(); n > 0 {
				log.Debug().Str("module", "adapters.http").Int("pruned", n).Msg("join limiter pruned")
			}
		}
	}
}

// Middleware rejects callers over the limit with 429.
func (rl *JoinRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			log.Info().Str("module", "adapters.http").Str("ip", c.ClientIP()).Msg("join rate limited")
			c.AbortWithStatusJSON(nethttp.StatusTooManyRequests, gin.H{"error": "too many join attempts"})
			return
		}
		c.Next()
	}
}
