package tui

import (
	"mathpad/internal/editor"
	"mathpad/internal/tokens"
	"mathpad/internal/tui/state"
	"mathpad/internal/tui/widgets/keypad"
)

// visibleGroups is the keypad for mode. The mode's action keys come first; a
// collapsed group keeps its row with nil Keys so it can be expanded in place.
func visibleGroups(mode editor.Mode, otherOpen bool) []tokens.Group {
	var out []tokens.Group
	switch mode {
	case editor.Matrix:
		out = append(out, tokens.MatrixKeys())
	case editor.ProofTree:
		out = append(out, tokens.ProofTreeKeys())
	}
	for _, g := range tokens.Layout() {
		if g.Collapsible && !otherOpen {
			g.Keys = nil
		}
		out = append(out, g)
	}
	return out
}

func rowSizes(groups []tokens.Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = len(g.Keys)
	}
	return out
}

// keyAt returns the selected key, or false on a collapsed row.
func keyAt(groups []tokens.Group, row, col int) (tokens.Key, bool) {
	if row < 0 || row >= len(groups) {
		return tokens.Key{}, false
	}
	keys := groups[row].Keys
	if col < 0 || col >= len(keys) {
		return tokens.Key{}, false
	}
	return keys[col], true
}

// KeypadText renders the keypad for mode with every group expanded and no
// selection, for printing outside the TUI.
func KeypadText(mode editor.Mode) string {
	return keypad.NewKeypad(true).View(state.UIState{Focus: state.FIELD}, visibleGroups(mode, true))
}
