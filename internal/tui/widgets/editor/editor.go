package editor

import (
    "strings"

    "github.com/charmbracelet/lipgloss"

    "mathpad/internal/tui/state"
    "mathpad/internal/tui/util"
)

// Cursor marks the insertion point when color is off.
const Cursor = "▏"

type Editor struct {
    NoColor bool
}

func NewEditor(noColor bool) Editor { return Editor{NoColor: noColor} }

// View renders the input field with the cursor at rune offset cursor. The
// border follows focus and brightens while the field pulses.
func (e Editor) View(s state.UIState, buf string, cursor int) string {
    focused := s.Focus == state.FIELD
    body := e.withCursor(buf, cursor, focused)
    if e.NoColor {
        return body + "\n"
    }
    p := util.DefaultPalette()
    box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(p.Idle)
    if focused {
        box = box.BorderForeground(p.Field)
    }
    if s.Pulse {
        box = box.Border(lipgloss.ThickBorder()).BorderForeground(p.Pulse)
    }
    if s.Width > 4 {
        box = box.Width(s.Width - 2)
    }
    return box.Render(body)
}

func (e Editor) withCursor(buf string, cursor int, focused bool) string {
    r := []rune(buf)
    if cursor < 0 {
        cursor = 0
    }
    if cursor > len(r) {
        cursor = len(r)
    }
    if !focused {
        return buf
    }
    if e.NoColor {
        return string(r[:cursor]) + Cursor + string(r[cursor:])
    }
    rev := lipgloss.NewStyle().Reverse(true)
    at := " "
    rest := ""
    if cursor < len(r) && r[cursor] != '\n' {
        at = string(r[cursor])
        rest = string(r[cursor+1:])
    } else if cursor < len(r) {
        rest = string(r[cursor:])
    }
    var b strings.Builder
    b.WriteString(string(r[:cursor]))
    b.WriteString(rev.Render(at))
    b.WriteString(rest)
    return b.String()
}
