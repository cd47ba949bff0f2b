// Package entries renders history entries for non-interactive output.
package entries

import (
    "fmt"
    "strings"
    "time"

    "mathpad/internal/editor"
    "mathpad/internal/history"
    "mathpad/internal/tui/state"
    "mathpad/internal/tui/util"
    chips "mathpad/internal/tui/widgets/tagchips"
)

// RenderTags is a thin adapter over the TagChips widget for list items.
// Entries do not record their mode, so the MODE chip is left out.
func RenderTags(tags []state.Tag, noColor bool) string {
    out := tags[:0:0]
    for _, t := range tags {
        if t.Kind != state.MODE {
            out = append(out, t)
        }
    }
    return chips.View(out, noColor)
}

// RenderList prints one line per entry, newest first, numbered from 1.
func RenderList(list []history.Entry, now time.Time, width int, noColor bool) string {
    if len(list) == 0 {
        return "(no history)\n"
    }
    if width <= 0 {
        width = 80
    }
    var b strings.Builder
    for i, e := range list {
        mark := " "
        if e.Cleared {
            mark = "✕"
        }
        text := util.OneLine(e.Latex, width-20)
        tags := RenderTags(util.ComputeTags(editor.Unicode, e.Latex), noColor)
        fmt.Fprintf(&b, "%2d %s %-8s %s  %s\n", i+1, mark, util.Ago(now, e.Time()), text, tags)
    }
    return b.String()
}
