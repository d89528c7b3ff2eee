package simulate

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled call. *time.Timer satisfies it; tests
// substitute a manual implementation.
type Timer interface {
	Stop() bool
}

// TimerFunc schedules f after d and returns a cancellable timer.
type TimerFunc func(d time.Duration, f func()) Timer

func defaultTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer collapses bursts of triggers into a single trailing-edge run:
// each trigger replaces any pending task and restarts the quiet-period timer,
// so only the most recent task ever runs. All plan-change sources share one
// Debouncer rather than duplicating timer logic per source.
type Debouncer struct {
	mu       sync.Mutex
	quiet    time.Duration
	newTimer TimerFunc
	timer    Timer
	task     func()
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return NewDebouncerWithTimer(quiet, defaultTimer)
}

// NewDebouncerWithTimer returns a debouncer with an injectable timer factory
// for tests.
func NewDebouncerWithTimer(quiet time.Duration, newTimer TimerFunc) *Debouncer {
	return &Debouncer{quiet: quiet, newTimer: newTimer}
}

// Trigger schedules task after the quiet period, cancelling and replacing any
// task already pending.
func (d *Debouncer) Trigger(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.task = task
	d.timer = d.newTimer(d.quiet, d.fire)
}

// Flush cancels any pending task and runs task immediately. Used by the
// manual/initial submission path that bypasses the debounce.
func (d *Debouncer) Flush(task func()) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
	d.mu.Unlock()
	task()
}

// Stop cancels any pending task without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	task := d.task
	d.task = nil
	d.timer = nil
	d.mu.Unlock()
	if task != nil {
		task()
	}
}
