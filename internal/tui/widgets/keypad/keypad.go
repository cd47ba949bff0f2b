// Package keypad draws the symbol buttons as rows of fixed-width cells.
package keypad

import (
    "fmt"
    "strings"

    "github.com/charmbracelet/lipgloss"
    "github.com/mattn/go-runewidth"

    "mathpad/internal/tokens"
    "mathpad/internal/tui/state"
)

// CellWidth is the display width of one key, brackets included.
const CellWidth = 5

var (
    keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "238", Dark: "252"})
    selStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "205", Dark: "213"}).Bold(true).Reverse(true)
    titleStyle = lipgloss.NewStyle().Faint(true)
)

type Keypad struct {
    NoColor bool
}

func NewKeypad(noColor bool) Keypad { return Keypad{NoColor: noColor} }

// View renders one line per group. Collapsed groups (nil Keys) show only their
// title. The selection is drawn only while the keypad has focus.
func (k Keypad) View(s state.UIState, groups []tokens.Group) string {
    titleW := 0
    for _, g := range groups {
        if w := runewidth.StringWidth(g.Title); w > titleW {
            titleW = w
        }
    }
    var b strings.Builder
    for i, g := range groups {
        title := runewidth.FillRight(g.Title, titleW)
        if k.NoColor {
            b.WriteString(title)
        } else {
            b.WriteString(titleStyle.Render(title))
        }
        b.WriteString(" ")
        if g.Keys == nil {
            b.WriteString(k.paint(keyStyle, "[+ o]"))
            if s.Focus == state.KEYPAD && s.Row == i {
                b.WriteString(" ◀")
            }
            b.WriteString("\n")
            continue
        }
        for j, key := range g.Keys {
            sel := s.Focus == state.KEYPAD && s.Row == i && s.Col == j
            b.WriteString(k.cell(key.Label, sel))
        }
        b.WriteString("\n")
    }
    return b.String()
}

func (k Keypad) cell(label string, selected bool) string {
    inner := center(label, CellWidth-2)
    if selected {
        if k.NoColor {
            return ">" + inner + "<"
        }
        return selStyle.Render("[" + inner + "]")
    }
    return k.paint(keyStyle, "["+inner+"]")
}

func (k Keypad) paint(st lipgloss.Style, s string) string {
    if k.NoColor {
        return s
    }
    return st.Render(s)
}

func center(s string, w int) string {
    sw := runewidth.StringWidth(s)
    if sw >= w {
        return runewidth.Truncate(s, w, "")
    }
    left := (w - sw) / 2
    return fmt.Sprintf("%s%s%s", strings.Repeat(" ", left), s, strings.Repeat(" ", w-sw-left))
}
