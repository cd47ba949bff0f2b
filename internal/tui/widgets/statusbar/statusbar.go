package statusbar

import (
    "fmt"
    "strings"

    "mathpad/internal/tui/state"
)

// Info is the editor state the status line reports beside UIState.
type Info struct {
    Mode     string
    Pending  bool // a history commit is scheduled
    History  int
    Degraded bool // history is not being persisted
}

type StatusBar struct{}

func NewStatusBar() StatusBar { return StatusBar{} }

// View composes a concise status line reflecting key UI state.
func (StatusBar) View(s state.UIState, in Info) string {
    focus := "[FIELD]"
    if s.Focus == state.KEYPAD {
        focus = "[KEYPAD]"
    }
    hist := fmt.Sprintf("History: %d", in.History)
    if in.Degraded {
        hist += " (memory only)"
    }
    if in.Pending {
        hist += " •"
    }
    parts := []string{focus, "Mode: " + in.Mode, hist}
    if s.Notice != "" {
        parts = append(parts, s.Notice)
    }
    return strings.Join(parts, "  ")
}
