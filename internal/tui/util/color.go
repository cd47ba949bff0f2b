package util

import (
    "github.com/charmbracelet/lipgloss"
    "github.com/muesli/termenv"

    "mathpad/internal/diag"
    "mathpad/internal/tui/state"
)

// NoColor returns true if color output should be disabled.
func NoColor(explicit bool) bool {
    if explicit {
        return true
    }
    return termenv.EnvNoColor()
}

// Palette maps the editor's visual roles to colors.
type Palette struct {
    Field   lipgloss.Color // focused field border, mode chip
    Pulse   lipgloss.Color // field border after a proof-tree newline
    Valid   lipgloss.Color // glyph counts, rectangular shapes
    Stray   lipgloss.Color // leftover LaTeX, crowded proof trees
    Invalid lipgloss.Color // irregular matrices, error toasts
    Idle    lipgloss.Color // unfocused border, plain counters
    Faint   lipgloss.Color
    Ink     lipgloss.Color // text on bright chips
    Paper   lipgloss.Color // text on dark chips
}

// DefaultPalette returns the default palette.
func DefaultPalette() Palette {
    return Palette{
        Field:   lipgloss.Color("#3D6DFF"),
        Pulse:   lipgloss.Color("#2AA876"),
        Valid:   lipgloss.Color("#2AA876"),
        Stray:   lipgloss.Color("#F0AD4E"),
        Invalid: lipgloss.Color("#D9534F"),
        Idle:    lipgloss.Color("#6C757D"),
        Faint:   lipgloss.Color("#5A5A5A"),
        Ink:     lipgloss.Color("#111111"),
        Paper:   lipgloss.Color("#FFFFFF"),
    }
}

// Chip returns background and foreground for a status chip.
func (p Palette) Chip(t state.Tag) (bg, fg lipgloss.Color) {
    switch t.Kind {
    case state.MODE:
        return p.Field, p.Paper
    case state.GLYPHS:
        return p.Valid, p.Paper
    case state.STRAY_LATEX:
        return p.Stray, p.Ink
    case state.SHAPE:
        if t.Text != "" {
            return p.Invalid, p.Paper
        }
        return p.Valid, p.Paper
    case state.PREMISES:
        if t.Value > 5 {
            return p.Stray, p.Ink
        }
        return p.Valid, p.Paper
    case state.LINES:
        return p.Faint, p.Paper
    default:
        return p.Idle, p.Paper
    }
}

// Severity returns the toast color for a diagnostic severity.
func (p Palette) Severity(s diag.Severity) lipgloss.Color {
    switch s {
    case diag.Error:
        return p.Invalid
    case diag.Warning:
        return p.Stray
    default:
        return p.Idle
    }
}
