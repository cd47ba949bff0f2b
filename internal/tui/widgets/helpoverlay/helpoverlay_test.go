package helpoverlay

import (
    "strings"
    "testing"

    "github.com/charmbracelet/bubbles/key"

    "mathpad/internal/tui/state"
)

func TestViewListsSections(t *testing.T) {
    out := NewHelpOverlay().View(state.UIState{Focus: state.KEYPAD, Width: 80}, []Section{
        {Title: "Editing", Keys: []key.Binding{key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear"))}},
    })
    for _, want := range []string{"Focus: KEYPAD", "Editing:", "ctrl+x", "clear"} {
        if !strings.Contains(out, want) {
            t.Fatalf("missing %q in:\n%s", want, out)
        }
    }
}
