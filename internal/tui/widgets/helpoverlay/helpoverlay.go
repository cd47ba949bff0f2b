package helpoverlay

import (
    "fmt"
    "strings"

    "github.com/charmbracelet/bubbles/help"
    "github.com/charmbracelet/bubbles/key"

    "mathpad/internal/tui/state"
)

// Section is a titled column of bindings.
type Section struct {
    Title string
    Keys  []key.Binding
}

type HelpOverlay struct {
    model help.Model
}

func NewHelpOverlay() HelpOverlay { return HelpOverlay{model: help.New()} }

// View returns grouped keys help with the current focus indicated.
func (h HelpOverlay) View(s state.UIState, sections []Section) string {
    focus := "FIELD"
    if s.Focus == state.KEYPAD {
        focus = "KEYPAD"
    }
    m := h.model
    m.Width = s.Width
    var b strings.Builder
    fmt.Fprintf(&b, "Help (Focus: %s)\n", focus)
    for _, sec := range sections {
        fmt.Fprintf(&b, "\n%s:\n", sec.Title)
        b.WriteString(m.FullHelpView([][]key.Binding{sec.Keys}))
        b.WriteString("\n")
    }
    return b.String()
}
