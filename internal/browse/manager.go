package browse

import (
	"context"
	"sync"
	"time"

	"MiniCatalog/internal/debounce"
)

// Manager hands out one Session per device and forgets idle ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	delay    time.Duration
	ttl      time.Duration
	schedule debounce.Scheduler
	now      func() time.Time
	metrics  *Metrics
}

type Option func(*Manager)

func WithScheduler(s debounce.Scheduler) Option {
	return func(m *Manager) { m.schedule = s }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func NewManager(delay, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		delay:    delay,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the device's session, creating it on first use.
func (m *Manager) Session(deviceID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s, ok := m.sessions[deviceID]; ok {
		s.touch(now)
		return s
	}

	var dopts []debounce.Option
	if m.schedule != nil {
		dopts = append(dopts, debounce.WithScheduler(m.schedule))
	}
	s := newSession(debounce.New(m.delay, dopts...), now, m.metrics.searchApplied)
	m.sessions[deviceID] = s
	m.metrics.setSessions(len(m.sessions))
	return s
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			s.close()
			delete(m.sessions, id)
			removed++
		}
	}
	m.metrics.setSessions(len(m.sessions))
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
