package propagation

import (
	"sync"
	"time"
)

// Timer is the stoppable handle an armed debounce holds. *time.Timer
// satisfies it; tests substitute manual timers fired by hand.
type Timer interface {
	Stop() bool
}

// TimerFactory arms a one-shot timer that runs fn after d. Injected so
// debounce behavior is testable without real sleeps.
type TimerFactory func(d time.Duration, fn func()) Timer

func RealTimerFactory(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer coalesces a burst of triggers into a single trailing-edge fire:
// each Trigger restarts the countdown, so only the last trigger of a burst
// causes fn to run. Superseded triggers are never delivered on their own.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	newTimer TimerFactory
	fn       func()
	timer    Timer
	stopped  bool
}

func NewDebouncer(interval time.Duration, newTimer TimerFactory, fn func()) *Debouncer {
	if newTimer == nil {
		newTimer = RealTimerFactory
	}
	return &Debouncer{
		interval: interval,
		newTimer: newTimer,
		fn:       fn,
	}
}

// Trigger restarts the debounce countdown. With a non-positive interval the
// callback runs synchronously.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.interval <= 0 {
		d.mu.Unlock()
		d.fn()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.newTimer(d.interval, d.fire)
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Stop cancels any armed timer and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
