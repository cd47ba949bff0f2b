package editor

import (
	"sort"
	"time"
)

// Cancel stops a scheduled task. Calling it after the task ran, or twice, is
// harmless.
type Cancel func()

// Timer schedules fn to run once after d. Implementations must run fn on the
// same goroutine that drives the Session.
type Timer interface {
	Schedule(d time.Duration, fn func()) Cancel
}

// ManualTimer runs tasks only when Advance moves its clock. The line-oriented
// REPL uses it to flush the commit debounce after each line.
type ManualTimer struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func NewManualTimer() *ManualTimer { return &ManualTimer{} }

func (m *ManualTimer) Schedule(d time.Duration, fn func()) Cancel {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTask{at: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() { t.cancelled = true }
}

// Advance moves the clock forward by d, running due tasks in time order.
// Tasks scheduled by a running task run too if they fall due before the new
// time.
func (m *ManualTimer) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.next(target)
		if t == nil {
			break
		}
		m.now = t.at
		t.fn()
	}
	m.now = target
}

func (m *ManualTimer) next(until time.Duration) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at != m.tasks[j].at {
			return m.tasks[i].at < m.tasks[j].at
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	if len(m.tasks) == 0 || m.tasks[0].at > until {
		return nil
	}
	t := m.tasks[0]
	m.tasks = m.tasks[1:]
	return t
}

// Pending counts tasks that have neither run nor been cancelled.
func (m *ManualTimer) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Now is the simulated time elapsed since creation.
func (m *ManualTimer) Now() time.Duration { return m.now }
