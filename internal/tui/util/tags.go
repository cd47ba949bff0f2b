package util

import (
    "strings"

    "mathpad/internal/editor"
    "mathpad/internal/matrix"
    "mathpad/internal/prooftree"
    "mathpad/internal/tokens"
    "mathpad/internal/tui/state"
)

// ComputeTags calculates the status chips for the field given the current
// mode and raw buffer.
//
// The returned slice preserves a stable order:
//   Mode, Glyphs, Stray LaTeX, Shape, Premises, Chars, Lines
//
// Rules:
// - Mode is always first.
// - Glyphs counts runes that have a LaTeX command; omitted when zero.
// - Stray LaTeX flags a backslash outside LaTeX mode, where nothing converts it.
// - Shape (rows×cols) only appears in Matrix mode for non-blank input; an
//   irregular matrix carries Text "!".
// - Premises only appears in Proof tree mode for non-blank input.
// - Chars and Lines are always included (counters).
func ComputeTags(mode editor.Mode, raw string) []state.Tag {
    tags := make([]state.Tag, 0, 7)

    // 1) Mode
    tags = append(tags, state.Tag{Kind: state.MODE, Text: mode.Title()})

    // 2) Glyphs
    if n := glyphCount(raw); n > 0 {
        tags = append(tags, state.Tag{Kind: state.GLYPHS, Value: n})
    }

    // 3) Stray LaTeX
    if mode != editor.Latex && tokens.ContainsLatex(raw) && !prooftree.IsBlock(raw) {
        tags = append(tags, state.Tag{Kind: state.STRAY_LATEX, Value: strings.Count(raw, `\`)})
    }

    switch mode {
    case editor.Matrix:
        // 4) Shape
        if m := matrix.Parse(raw); m != nil {
            t := state.Tag{Kind: state.SHAPE, Value: m.RowCount(), Cols: m.ColCount()}
            if !m.Rectangular() {
                t.Text = "!"
            }
            tags = append(tags, t)
        }
    case editor.ProofTree:
        // 5) Premises
        if len(prooftree.Lines(raw)) > 0 && !prooftree.IsBlock(raw) {
            m, _ := prooftree.Parse(raw)
            tags = append(tags, state.Tag{Kind: state.PREMISES, Value: len(m.Premises)})
        }
    }

    // 6) Chars
    tags = append(tags, state.Tag{Kind: state.CHARS, Value: runeLen(raw)})

    // 7) Lines
    tags = append(tags, state.Tag{Kind: state.LINES, Value: lineCount(raw)})

    return tags
}

func glyphCount(s string) int {
    n := 0
    for _, r := range s {
        if _, ok := tokens.Lookup(string(r)); ok {
            n++
        }
    }
    return n
}

func lineCount(s string) int {
    if s == "" {
        return 0
    }
    return strings.Count(s, "\n") + 1
}

// runeLen returns the length of s in runes (Unicode code points).
func runeLen(s string) int {
    return len([]rune(s))
}
