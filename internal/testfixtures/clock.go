package testfixtures

import (
	"sync"
	"time"
)

// EventStart is the first morning of the fixture event, a Wednesday.
var EventStart = time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)

// Clock is a manually driven time source safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at EventStart when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = EventStart
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns Now for injection; a nil clock falls back to time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Ticker returns a func that advances the clock by step on every call, for
// code that measures durations between two Now calls.
func (c *Clock) Ticker(step time.Duration) func() time.Time {
	return func() time.Time {
		return c.Advance(step)
	}
}
