package util

import (
    "testing"

    "mathpad/internal/diag"
    "mathpad/internal/tui/state"
)

func TestNoColorExplicit(t *testing.T) {
    if !NoColor(true) { t.Fatalf("explicit flag must disable color") }
    t.Setenv("NO_COLOR", "1")
    if !NoColor(false) { t.Fatalf("NO_COLOR must disable color") }
}

func TestChipFlagsProblems(t *testing.T) {
    p := DefaultPalette()
    if bg, _ := p.Chip(state.Tag{Kind: state.SHAPE, Value: 2, Cols: 2, Text: "!"}); bg != p.Invalid {
        t.Fatalf("irregular shape should use the invalid color, got %v", bg)
    }
    if bg, _ := p.Chip(state.Tag{Kind: state.SHAPE, Value: 2, Cols: 2}); bg != p.Valid {
        t.Fatalf("rectangular shape should use the valid color, got %v", bg)
    }
    if bg, fg := p.Chip(state.Tag{Kind: state.STRAY_LATEX, Value: 1}); bg != p.Stray || fg != p.Ink {
        t.Fatalf("stray LaTeX chip: got %v on %v", fg, bg)
    }
    if bg, _ := p.Chip(state.Tag{Kind: state.PREMISES, Value: 6}); bg != p.Stray {
        t.Fatalf("more than five premises should be flagged")
    }
    if bg, _ := p.Chip(state.Tag{Kind: state.PREMISES, Value: 5}); bg != p.Valid {
        t.Fatalf("five premises are fine")
    }
}

func TestSeverity(t *testing.T) {
    p := DefaultPalette()
    if p.Severity(diag.Error) != p.Invalid { t.Fatalf("error toast color") }
    if p.Severity(diag.Warning) != p.Stray { t.Fatalf("warning toast color") }
    if p.Severity(diag.Info) != p.Idle { t.Fatalf("info toast color") }
}
