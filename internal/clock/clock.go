// Package clock provides an injectable time source. Production code uses
// Real(); tests use Fake() and move time forward with Advance.
package clock

import "time"

// Clock abstracts the time operations used by the token ledger, the
// sweeper and the rate limiter.
type Clock interface {
	Now() time.Time
	// NewTicker returns a Ticker delivering ticks every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. C has capacity 1; ticks are dropped
// when the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns off the ticker. It does not close C.
func (t *Ticker) Stop() { t.stop() }
