package diff

import (
    "strings"

    "github.com/charmbracelet/lipgloss"
    "github.com/mattn/go-runewidth"
    dmp "github.com/sergi/go-diff/diffmatchpatch"

    "mathpad/internal/tui/state"
)

var (
    delLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
    addLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
    delChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Underline(true)
    addChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}).Underline(true)
    faint   = lipgloss.NewStyle().Faint(true)
)

type DiffView struct {
    NoColor bool
}

func NewDiffView(noColor bool) DiffView { return DiffView{NoColor: noColor} }

// View renders what a cleaning pass changed. Unified prefixes lines with -/+
// markers; SideBySide aligns TYPED and CLEANED columns. Changed runs inside a
// line are underlined unless color is off.
func (v DiffView) View(s state.UIState, before, after string) string {
    if before == after {
        return "No changes\n"
    }
    if s.View == state.SideBySide {
        return v.sideBySide(before, after, s.Width)
    }
    return v.unified(before, after)
}

func (v DiffView) paint(st lipgloss.Style, text string) string {
    if v.NoColor {
        return text
    }
    return st.Render(text)
}

func spans(before, after string) []dmp.Diff {
    d := dmp.New()
    diffs := d.DiffMain(before, after, false)
    return d.DiffCleanupSemantic(diffs)
}

func (v DiffView) unified(before, after string) string {
    var b strings.Builder
    b.WriteString("TYPED vs CLEANED (Unified)\n")
    bl := strings.Split(before, "\n")
    al := strings.Split(after, "\n")
    if len(bl) != len(al) {
        for _, l := range bl {
            b.WriteString(v.paint(delLine, "- "+l) + "\n")
        }
        for _, l := range al {
            b.WriteString(v.paint(addLine, "+ "+l) + "\n")
        }
        return b.String()
    }
    for i := range bl {
        if bl[i] == al[i] {
            b.WriteString("  " + v.paint(faint, bl[i]) + "\n")
            continue
        }
        diffs := spans(bl[i], al[i])
        b.WriteString(v.paint(delLine, "- "))
        for _, df := range diffs {
            switch df.Type {
            case dmp.DiffDelete:
                b.WriteString(v.paint(delChar, df.Text))
            case dmp.DiffEqual:
                b.WriteString(v.paint(delLine, df.Text))
            }
        }
        b.WriteString("\n")
        b.WriteString(v.paint(addLine, "+ "))
        for _, df := range diffs {
            switch df.Type {
            case dmp.DiffInsert:
                b.WriteString(v.paint(addChar, df.Text))
            case dmp.DiffEqual:
                b.WriteString(v.paint(addLine, df.Text))
            }
        }
        b.WriteString("\n")
    }
    return b.String()
}

func (v DiffView) sideBySide(before, after string, width int) string {
    const sep = " │ "
    colWidth := 40
    if width > 0 {
        colWidth = (width - runewidth.StringWidth(sep)) / 2
        if colWidth < 10 {
            colWidth = 10
        }
    }
    var b strings.Builder
    b.WriteString(pad("TYPED", colWidth) + sep + "CLEANED\n")
    left := strings.Split(before, "\n")
    right := strings.Split(after, "\n")
    n := len(left)
    if len(right) > n {
        n = len(right)
    }
    for i := 0; i < n; i++ {
        var l, r string
        if i < len(left) {
            l = left[i]
        }
        if i < len(right) {
            r = right[i]
        }
        l = runewidth.Truncate(l, colWidth, "…")
        r = runewidth.Truncate(r, colWidth, "…")
        if l == r {
            b.WriteString(v.paint(faint, pad(l, colWidth)) + sep + v.paint(faint, r) + "\n")
            continue
        }
        var lb, rb strings.Builder
        for _, df := range spans(l, r) {
            switch df.Type {
            case dmp.DiffDelete:
                lb.WriteString(v.paint(delChar, df.Text))
            case dmp.DiffInsert:
                rb.WriteString(v.paint(addChar, df.Text))
            case dmp.DiffEqual:
                lb.WriteString(v.paint(delLine, df.Text))
                rb.WriteString(v.paint(addLine, df.Text))
            }
        }
        gap := colWidth - runewidth.StringWidth(l)
        if gap < 0 {
            gap = 0
        }
        b.WriteString(lb.String() + strings.Repeat(" ", gap) + sep + rb.String() + "\n")
    }
    return b.String()
}

func pad(s string, width int) string {
    return runewidth.FillRight(s, width)
}
