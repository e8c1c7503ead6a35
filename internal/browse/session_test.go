package browse

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCatalog/internal/debounce"
	"MiniCatalog/internal/debounce/debouncetest"
)

func TestSession_TypeAppliesAfterWindow(t *testing.T) {
	clock := debouncetest.New()
	m := NewManager(debounce.DefaultDelay, time.Hour, WithScheduler(clock.Schedule))
	s := m.Session("dev")

	require.NoError(t, s.SetPage(3))
	s.Type("w")
	clock.Advance(100 * time.Millisecond)
	s.Type("wi")
	clock.Advance(100 * time.Millisecond)
	s.Type("wid")

	st := s.State()
	assert.Equal(t, "wid", st.Input)
	assert.Equal(t, "", st.Term, "filter waits for the window")
	assert.Equal(t, 3, st.Page, "page only resets when the term applies")
	assert.True(t, st.Pending)

	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "", s.State().Term)

	clock.Advance(time.Millisecond)
	st = s.State()
	assert.Equal(t, State{Input: "wid", Term: "wid", Page: 1, Pending: false}, st)
}

func TestSession_SetPage(t *testing.T) {
	m := NewManager(debounce.DefaultDelay, time.Hour)
	s := m.Session("dev")

	assert.ErrorIs(t, s.SetPage(0), ErrBadPage)
	assert.ErrorIs(t, s.SetPage(-2), ErrBadPage)
	assert.Equal(t, 1, s.State().Page)

	require.NoError(t, s.SetPage(7))
	assert.Equal(t, 7, s.State().Page)
}

func TestManager_OneSessionPerDevice(t *testing.T) {
	m := NewManager(debounce.DefaultDelay, time.Hour)

	a := m.Session("a")
	assert.Same(t, a, m.Session("a"))
	assert.NotSame(t, a, m.Session("b"))
	assert.Equal(t, 2, m.Len())
}

func TestManager_SweepDropsIdleAndPending(t *testing.T) {
	clock := debouncetest.New()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := prometheus.NewRegistry()
	mt := NewMetrics(reg)

	m := NewManager(debounce.DefaultDelay, 30*time.Minute,
		WithScheduler(clock.Schedule),
		WithClock(func() time.Time { return now }),
		WithMetrics(mt),
	)

	idle := m.Session("idle")
	idle.Type("lamp")
	m.Session("busy")
	assert.Equal(t, 2.0, testutil.ToFloat64(mt.Sessions))

	now = now.Add(20 * time.Minute)
	m.Session("busy")
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Sessions))

	clock.Advance(time.Second)
	assert.Equal(t, "", idle.State().Term, "swept session must not apply its pending search")
	assert.Equal(t, 0.0, testutil.ToFloat64(mt.SearchApplied))

	busy := m.Session("busy")
	busy.Type("mug")
	clock.Advance(time.Second)
	assert.Equal(t, "mug", busy.State().Term)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.SearchApplied))
}

func TestSession_RealTimerAppliesTermsInOrder(t *testing.T) {
	m := NewManager(time.Millisecond, time.Hour)
	s := m.Session("dev")

	const n = 300
	done := make(chan struct{})
	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := ""
			for {
				select {
				case <-done:
					return
				default:
				}
				term := s.State().Term
				assert.GreaterOrEqual(t, term, prev, "an older term applied after a newer one")
				prev = term
			}
		}()
	}

	for i := range n {
		s.Type(fmt.Sprintf("%04d", i))
		if i%50 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
	}

	last := fmt.Sprintf("%04d", n-1)
	require.Eventually(t, func() bool {
		st := s.State()
		return st.Term == last && !st.Pending
	}, 2*time.Second, 5*time.Millisecond)

	close(done)
	wg.Wait()
	assert.Equal(t, State{Input: last, Term: last, Page: 1}, s.State())
}

func TestSession_ConcurrentTypersLastInputWins(t *testing.T) {
	m := NewManager(20*time.Millisecond, time.Hour)
	s := m.Session("dev")

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				s.Type(fmt.Sprintf("w%d-%d", w, i))
				_ = s.State()
			}
		}()
	}
	wg.Wait()

	input := s.State().Input
	require.Eventually(t, func() bool {
		st := s.State()
		return st.Term == input && !st.Pending
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, input, s.State().Input)
}

func TestManager_RunWithoutIntervalReturns(t *testing.T) {
	m := NewManager(debounce.DefaultDelay, time.Hour)

	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with a zero interval did not return")
	}
}
