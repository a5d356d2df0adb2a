// Package countdown implements the one-shot session deadline timer.
package countdown

import (
	"sync"
	"time"
)

// Countdown tracks whole seconds remaining until a single terminal expiry.
// Pausing freezes the remaining count; resuming continues from the frozen
// value. Done fires exactly once, at zero, never at a negative value.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	running   bool
	fired     bool
	stopCh    chan struct{}

	interval time.Duration
	ticks    chan int
	done     chan struct{}
}

// New constructs a countdown holding the given number of seconds, not yet running.
func New(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{
		remaining: seconds,
		interval:  time.Second,
		ticks:     make(chan int, 1),
		done:      make(chan struct{}),
	}
}

// Start begins (or resumes) ticking from the current remaining count.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.fired {
		return
	}
	if c.remaining <= 0 {
		c.fire()
		return
	}

	c.running = true
	c.stopCh = make(chan struct{})
	go c.run(c.stopCh)
}

// Resume is an alias for Start; the frozen count carries over.
func (c *Countdown) Resume() {
	c.Start()
}

// Pause freezes the remaining count without firing.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
}

// Stop permanently halts the countdown; Done never fires after Stop.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.fired = true
}

// Remaining returns the frozen or live remaining whole seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Ticks exposes per-second remaining values; slow consumers see only the latest.
func (c *Countdown) Ticks() <-chan int {
	return c.ticks
}

// Done is closed exactly once when the count reaches zero while running.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// run decrements once per interval until zero, pause, or stop.
func (c *Countdown) run(stopCh chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if expired := c.decrement(stopCh); expired {
				return
			}
		}
	}
}

// decrement applies one tick; returns true when the countdown fired.
func (c *Countdown) decrement(stopCh chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.stopCh != stopCh || c.fired {
		return true
	}

	c.remaining--
	c.publishTick(c.remaining)
	if c.remaining > 0 {
		return false
	}

	c.halt()
	c.fire()
	return true
}

// publishTick replaces a stale unconsumed tick with the latest value.
func (c *Countdown) publishTick(remaining int) {
	select {
	case c.ticks <- remaining:
	default:
		select {
		case <-c.ticks:
		default:
		}
		c.ticks <- remaining
	}
}

// halt stops the run goroutine; callers must hold c.mu.
func (c *Countdown) halt() {
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
	c.stopCh = nil
}

// fire closes Done once; callers must hold c.mu.
func (c *Countdown) fire() {
	if c.fired {
		return
	}
	c.fired = true
	if c.remaining < 0 {
		c.remaining = 0
	}
	close(c.done)
}
