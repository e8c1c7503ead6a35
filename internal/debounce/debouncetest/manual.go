// Package debouncetest provides a manually advanced scheduler for tests.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"MiniCatalog/internal/debounce"
)

type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

type timer struct {
	m       *Manual
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func New() *Manual { return &Manual{} }

// Schedule satisfies debounce.Scheduler.
func (m *Manual) Schedule(d time.Duration, f func()) debounce.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &timer{m: m, at: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward and runs every callback that came due,
// earliest first, on the calling goroutine.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d

	var due []*timer
	live := m.timers[:0]
	for _, t := range m.timers {
		switch {
		case t.stopped:
		case t.at <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			live = append(live, t)
		}
	}
	m.timers = live
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Scheduled reports how many callbacks are waiting.
func (m *Manual) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
