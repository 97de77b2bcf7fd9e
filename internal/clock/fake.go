package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time stands still until Advance is
// called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	c       chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ft := &fakeTicker{
		c:      make(chan time.Time, 1),
		period: d,
		next:   f.current.Add(d),
	}
	f.tickers = append(f.tickers, ft)
	return &Ticker{
		C: ft.c,
		stop: func() {
			f.mu.Lock()
			ft.stopped = true
			f.mu.Unlock()
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// deadline has been reached. A ticker that missed several periods
// delivers a single tick.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
	for _, ft := range f.tickers {
		if ft.stopped || f.current.Before(ft.next) {
			continue
		}
		for !f.current.Before(ft.next) {
			ft.next = ft.next.Add(ft.period)
		}
		select {
		case ft.c <- f.current:
		default:
		}
	}
}

// Set jumps the clock to t without firing tickers.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// Tickers reports how many live tickers are registered.
func (f *FakeClock) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ft := range f.tickers {
		if !ft.stopped {
			n++
		}
	}
	return n
}
