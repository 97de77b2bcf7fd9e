package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock_AdvanceMovesNow(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Fake(start)

	assert.Equal(t, start, c.Now())
	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestFakeClock_TickerFiresOnDeadline(t *testing.T) {
	c := Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	ticker := c.NewTicker(time.Minute)
	defer ticker.Stop()

	c.Advance(30 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("ticker fired before its period elapsed")
	default:
	}

	c.Advance(30 * time.Second)
	select {
	case got := <-ticker.C:
		assert.Equal(t, c.Now(), got)
	default:
		t.Fatal("ticker did not fire after one period")
	}
}

func TestFakeClock_StoppedTickerIsSilent(t *testing.T) {
	c := Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	ticker := c.NewTicker(time.Second)
	require.Equal(t, 1, c.Tickers())

	ticker.Stop()
	assert.Equal(t, 0, c.Tickers())

	c.Advance(time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}
