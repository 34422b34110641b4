// Package timeutil lets the frame loop, the live window and the synthetic
// stream read time through an interface that tests step by hand.
package timeutil

import (
	"slices"
	"sync"
	"time"
)

// Clock is the subset of the time package the scope depends on.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTicker(d time.Duration) Ticker
}

// Ticker mirrors time.Ticker with the channel behind a method.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time                   { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration  { return time.Since(t) }
func (RealClock) NewTicker(d time.Duration) Ticker { return wallTicker{time.NewTicker(d)} }

type wallTicker struct{ *time.Ticker }

func (w wallTicker) C() <-chan time.Time { return w.Ticker.C }

// MockClock stands still until Advance is called. Tickers it hands out
// are fired from Advance.
type MockClock struct {
	mu       sync.Mutex
	now      time.Time
	schedule []*MockTicker
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }

// Advance moves time forward by d. Every ticker that came due delivers at
// most one tick; like time.Ticker, a reader that is behind loses the rest.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	due := slices.Clone(c.schedule)
	c.mu.Unlock()

	for _, tk := range due {
		tk.tick(now)
	}
}

func (c *MockClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	tk := &MockTicker{
		ch:     make(chan time.Time, 1),
		period: d,
		next:   c.now.Add(d),
	}
	c.schedule = append(c.schedule, tk)
	return tk
}

// Tickers reports how many tickers were created, stopped ones included.
// Tests poll it to know a loop has started.
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schedule)
}

type MockTicker struct {
	ch     chan time.Time
	period time.Duration

	mu      sync.Mutex
	next    time.Time
	stopped bool
}

func (t *MockTicker) C() <-chan time.Time { return t.ch }

func (t *MockTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTicker) tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || now.Before(t.next) {
		return
	}
	select {
	case t.ch <- now:
	default:
	}
	for !t.next.After(now) && t.period > 0 {
		t.next = t.next.Add(t.period)
	}
}
