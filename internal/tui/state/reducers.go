package state

// ToggleFocus switches keys between the field and the keypad and sets a brief notice.
func ToggleFocus(s UIState) UIState {
    if s.Focus == FIELD {
        s.Focus = KEYPAD
        s.Notice = "[KEYPAD]"
    } else {
        s.Focus = FIELD
        s.Notice = "[FIELD]"
    }
    return s
}

// ToggleOther expands or collapses the "other" symbol group.
func ToggleOther(s UIState) UIState {
    s.OtherOpen = !s.OtherOpen
    return s
}

// ToggleView switches between Unified and SideBySide diff views.
func ToggleView(s UIState) UIState {
    if s.View == Unified {
        s.View = SideBySide
    } else {
        s.View = Unified
    }
    return s
}

// Open shows an overlay; opening the one already shown closes it.
func Open(s UIState, o Overlay) UIState {
    if s.Overlay == o {
        s.Overlay = NoOverlay
        return s
    }
    s.Overlay = o
    return s
}

// Close hides any overlay.
func Close(s UIState) UIState {
    s.Overlay = NoOverlay
    return s
}

// Resize updates the size and sets a fallback notice if too narrow for side-by-side.
// Threshold heuristic: need at least 2*MinCol plus 3 chars for separator/gutters.
func Resize(s UIState, width, height int) UIState {
    s.Width = width
    s.Height = height
    threshold := 2*s.MinCol + 3
    if s.View == SideBySide && s.Width < threshold {
        s.View = Unified
        s.Notice = "Narrow width: using unified view"
    }
    return s
}

// MoveKey moves the keypad selection. rows holds the key count of each
// visible row; the column is clamped when changing rows and wraps within a row.
func MoveKey(s UIState, dRow, dCol int, rows []int) UIState {
    if len(rows) == 0 {
        s.Row, s.Col = 0, 0
        return s
    }
    s.Row += dRow
    if s.Row < 0 {
        s.Row = 0
    }
    if s.Row >= len(rows) {
        s.Row = len(rows) - 1
    }
    n := rows[s.Row]
    if n == 0 {
        s.Col = 0
        return s
    }
    s.Col += dCol
    if s.Col < 0 {
        s.Col = n - 1
    } else if s.Col >= n && dCol > 0 {
        s.Col = 0
    } else if s.Col >= n {
        s.Col = n - 1
    }
    return s
}

// ClampKey keeps the selection valid after the visible rows changed.
func ClampKey(s UIState, rows []int) UIState {
    return MoveKey(s, 0, 0, rows)
}

// SetPulse turns the field breathing effect on or off.
func SetPulse(s UIState, on bool) UIState {
    s.Pulse = on
    return s
}

// SetNotice replaces the status line notice.
func SetNotice(s UIState, msg string) UIState {
    s.Notice = msg
    return s
}
