package game

import (
	"sync/atomic"
	"time"

	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/clock"
)

// mockTicker implements the clock.Ticker interface with a channel the test writes ticks to.
type mockTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

func (t *mockTicker) Stop() {
	t.stopped.Store(true)
}

// tick sends a tick on the ticker's channel.
func (t *mockTicker) tick() {
	t.ch <- time.Time{}
}

// mockTickers creates a clock config that publishes the tickers it creates on the returned channel.
func mockTickers() (clock.Config, <-chan *mockTicker) {
	tickers := make(chan *mockTicker, 16)
	cfg := clock.Config{
		Period: time.Second,
		NewTickerFunc: func(d time.Duration) clock.Ticker {
			t := &mockTicker{
				ch: make(chan time.Time),
			}
			tickers <- t
			return t
		},
	}
	return cfg, tickers
}
