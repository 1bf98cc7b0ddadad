// Package debounce provides a quiet-period activity monitor: triggers
// within the window coalesce, and the callback fires once after the last
// trigger has been quiet for the full interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet period used when none is configured.
const DefaultInterval = time.Second

// Monitor defers a callback until triggers stop arriving.
type Monitor struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New returns a monitor that invokes fn after interval of inactivity.
// A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, fn func()) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{interval: interval, fn: fn}
}

// Trigger records activity, restarting the quiet-period countdown.
// Triggers after Stop are ignored.
func (m *Monitor) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.fn == nil {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	// A stopped timer may already be mid-fire; the generation check in
	// fire discards it.
	m.gen++
	gen := m.gen
	m.timer = time.AfterFunc(m.interval, func() { m.fire(gen) })
}

// Stop cancels any pending callback and ignores further triggers.
// Stop is idempotent. A callback already executing is not interrupted.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if m.stopped || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	fn := m.fn
	m.mu.Unlock()

	fn()
}
