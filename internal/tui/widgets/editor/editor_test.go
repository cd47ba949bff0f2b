package editor

import (
    "testing"

    "mathpad/internal/tui/state"
)

func TestCursorMarker(t *testing.T) {
    e := NewEditor(true)
    if got := e.View(state.UIState{Focus: state.FIELD}, "p→q", 1); got != "p▏→q\n" {
        t.Fatalf("unexpected field %q", got)
    }
    if got := e.View(state.UIState{Focus: state.FIELD}, "ab", 99); got != "ab▏\n" {
        t.Fatalf("cursor must clamp, got %q", got)
    }
}

func TestNoCursorWithoutFocus(t *testing.T) {
    if got := NewEditor(true).View(state.UIState{Focus: state.KEYPAD}, "p", 0); got != "p\n" {
        t.Fatalf("unexpected field %q", got)
    }
}
