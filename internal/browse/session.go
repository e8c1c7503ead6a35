package browse

import (
	"errors"
	"sync"
	"time"

	"MiniCatalog/internal/debounce"
)

var ErrBadPage = errors.New("page must be 1 or greater")

// State is a point-in-time copy of a list screen.
type State struct {
	Input   string // what is in the search box
	Term    string // what the list is filtered by
	Page    int
	Pending bool // a keystroke is waiting out the debounce window
}

// Session is one device's list screen. Keystrokes reach the filter only
// after the input has been quiet for the debounce window; applying a term
// resets the page to 1.
type Session struct {
	mu       sync.Mutex
	input    string
	term     string
	page     int
	gen      uint64
	lastSeen time.Time

	debounce *debounce.Debouncer
	onApply  func()
}

func newSession(d *debounce.Debouncer, now time.Time, onApply func()) *Session {
	return &Session{
		page:     1,
		lastSeen: now,
		debounce: d,
		onApply:  onApply,
	}
}

// Type records a new search box value and schedules it to become the
// filter term. It supersedes any keystroke still waiting.
func (s *Session) Type(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = input
	s.gen++
	gen := s.gen
	s.debounce.Trigger(func() { s.apply(gen, input) })
}

func (s *Session) apply(gen uint64, term string) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.term = term
	s.page = 1
	s.mu.Unlock()

	if s.onApply != nil {
		s.onApply()
	}
}

func (s *Session) SetPage(page int) error {
	if page < 1 {
		return ErrBadPage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Input:   s.input,
		Term:    s.term,
		Page:    s.page,
		Pending: s.debounce.Pending(),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// close drops any pending keystroke for good.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.debounce.Cancel()
}
