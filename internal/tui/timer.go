package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mathpad/internal/editor"
)

type timerMsg struct{ id int }

// teaTimer runs editor tasks on the Bubble Tea loop. Schedule queues a tick
// command; the model drains the queue after every Update and fires the task
// when its timerMsg arrives, unless it was cancelled first.
type teaTimer struct {
	next  int
	tasks map[int]func()
	queue []tea.Cmd
}

func newTeaTimer() *teaTimer {
	return &teaTimer{tasks: map[int]func(){}}
}

func (t *teaTimer) Schedule(d time.Duration, fn func()) editor.Cancel {
	t.next++
	id := t.next
	t.tasks[id] = fn
	t.queue = append(t.queue, tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{id: id} }))
	return func() { delete(t.tasks, id) }
}

// fire runs the task for id. Cancelled or already-run ids are ignored.
func (t *teaTimer) fire(id int) bool {
	fn, ok := t.tasks[id]
	if !ok {
		return false
	}
	delete(t.tasks, id)
	fn()
	return true
}

func (t *teaTimer) drain() []tea.Cmd {
	q := t.queue
	t.queue = nil
	return q
}

func (t *teaTimer) pending() int { return len(t.tasks) }
