// Package clock provides the countdown ticker for rounds of a game.
package clock

import (
	"fmt"
	"time"
)

type (
	// Clock sends a tick every period while it is started.
	// Clock is not safe for concurrent use; it should be owned by the goroutine that reads its channel.
	Clock struct {
		ticker Ticker
		Config
	}

	// Config contains the properties to create clocks.
	Config struct {
		// Period is the amount of time between ticks.  Rounds count down once per second.
		Period time.Duration
		// NewTickerFunc creates the ticker that backs the clock.
		// If not specified, a time.Ticker is used.
		NewTickerFunc func(d time.Duration) Ticker
	}

	// Ticker delivers ticks on a channel until it is stopped.
	Ticker interface {
		// C is the channel the ticks are delivered on.
		C() <-chan time.Time
		// Stop turns off the ticker.  No more ticks are sent after it is stopped.
		Stop()
	}

	// timeTicker implements the Ticker interface by wrapping a time.Ticker.
	timeTicker struct {
		*time.Ticker
	}
)

// DefaultPeriod is the amount of time between clock ticks of rounds.
const DefaultPeriod = time.Second

// NewClock creates a stopped clock.
func (cfg Config) NewClock() (*Clock, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating clock: validation: %w", err)
	}
	if cfg.NewTickerFunc == nil {
		cfg.NewTickerFunc = newTimeTicker
	}
	c := Clock{
		Config: cfg,
	}
	return &c, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Period <= 0:
		return fmt.Errorf("positive period required")
	}
	return nil
}

// Start starts the clock.  If the clock was already started, it is restarted so the next tick is a full period away.
func (c *Clock) Start() {
	c.Stop()
	c.ticker = c.NewTickerFunc(c.Period)
}

// Stop stops the clock.  Stopping a stopped clock does nothing.
func (c *Clock) Stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool {
	return c.ticker != nil
}

// C is the channel the ticks of the clock are delivered on.
// The channel is nil when the clock is stopped, so receiving from it blocks forever.
func (c *Clock) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

func newTimeTicker(d time.Duration) Ticker {
	t := time.NewTicker(d)
	return timeTicker{t}
}

// C implements the Ticker interface.
func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}
