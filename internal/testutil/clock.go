package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe fake wall clock for tests.
//
// Each call to Now returns the current instant and then advances it by Step, so successive
// timestamps are strictly increasing and reproducible across runs.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock starts at start and advances one second per reading.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start, Step: time.Second}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Peek returns the next reading without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
