package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/whowasi/internal/clock"
)

func TestJoinRateLimiter_SlidingWindow(t *testing.T) {
	c := clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	rl := NewJoinRateLimiter(2, time.Minute, c)

	assert.True(t, rl.Allow("10.0.0.1"))
	c.Advance(10 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "keys are independent")

	// first attempt leaves the window
	c.Advance(50 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestJoinRateLimiter_Prune(t *testing.T) {
	c := clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	rl := NewJoinRateLimiter(5, time.Minute, c)
	rl.Allow("a")
	rl.Allow("b")

	assert.Equal(t, 0, rl.Prune())
	c.Advance(2 * time.Minute)
	assert.Equal(t, 2, rl.Prune())
	assert.Equal(t, 0, rl.Prune())
}

func TestJoinRateLimiter_RunStopsWithContext(t *testing.T) {
	c := clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	rl := NewJoinRateLimiter(5, time.Minute, c)
	rl.Allow("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return c.Tickers() == 1 }, time.Second, time.Millisecond)

	c.Advance(2 * time.Minute)
	require.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.history) == 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
