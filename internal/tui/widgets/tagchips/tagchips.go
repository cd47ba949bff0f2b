package tagchips

import (
    "fmt"
    "strings"

    "github.com/charmbracelet/lipgloss"

    "mathpad/internal/tui/state"
    "mathpad/internal/tui/util"
)

// View renders field tags in a stable order using colored chips when
// possible and ASCII fallbacks when color is disabled or not desired.
func View(tags []state.Tag, noColor bool) string {
    if len(tags) == 0 {
        return ""
    }
    noColor = util.NoColor(noColor)

    parts := make([]string, 0, len(tags))
    for _, t := range tags {
        parts = append(parts, renderChip(t, noColor))
    }
    return strings.Join(parts, " ")
}

func renderChip(t state.Tag, noColor bool) string {
    label := chipLabel(t)
    if noColor {
        return fmt.Sprintf("[%s]", label)
    }
    return chipStyle(t).Render(" " + label + " ")
}

func chipLabel(t state.Tag) string {
    switch t.Kind {
    case state.MODE:
        return t.Text
    case state.GLYPHS:
        return fmt.Sprintf("Glyphs %d", t.Value)
    case state.STRAY_LATEX:
        return fmt.Sprintf("Stray \\ %d", t.Value)
    case state.SHAPE:
        return fmt.Sprintf("%d×%d%s", t.Value, t.Cols, t.Text)
    case state.PREMISES:
        return fmt.Sprintf("Premises %d", t.Value)
    case state.CHARS:
        return fmt.Sprintf("Chars %d", t.Value)
    case state.LINES:
        return fmt.Sprintf("Lines %d", t.Value)
    default:
        return "Tag"
    }
}

func chipStyle(t state.Tag) lipgloss.Style {
    bg, fg := util.DefaultPalette().Chip(t)
    return lipgloss.NewStyle().Padding(0, 1).Bold(true).Background(bg).Foreground(fg)
}
