// Package debounce defers a task until its trigger has been quiet for a
// fixed window. A newer trigger supersedes the pending task.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiescence window used for search input.
const DefaultDelay = 500 * time.Millisecond

// Timer is the handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	timer    Timer
	gen      uint64
}

type Option func(*Debouncer)

func WithScheduler(s Scheduler) Option {
	return func(d *Debouncer) { d.schedule = s }
}

func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{delay: delay, schedule: afterFunc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger cancels the pending task, if any, and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.schedule(d.delay, func() {
		d.mu.Lock()
		if d.gen != gen {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending task.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
