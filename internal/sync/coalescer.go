package sync

import (
	gosync "sync"
	"time"
)

// Coalescer batches rapid calls into a single execution: Schedule
// replaces any pending function and restarts the quiet-window timer, so
// a burst of calls runs the last function once, after the window
// settles. It is the one debouncing primitive in the codebase — no ad
// hoc timers at call sites.
type Coalescer struct {
	mu      gosync.Mutex
	window  time.Duration
	timer   *time.Timer
	stopped bool
}

// NewCoalescer creates a Coalescer with the given quiet window.
func NewCoalescer(window time.Duration) *Coalescer {
	return &Coalescer{window: window}
}

// Schedule queues fn to run after the quiet window, replacing any
// previously scheduled function and resetting the window.
func (c *Coalescer) Schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, fn)
}

// Stop cancels any pending execution and rejects future schedules.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
