package util

import (
    "fmt"
    "strings"
    "time"
)

// OneLine flattens newlines and cuts s to max runes.
func OneLine(s string, max int) string {
    s = strings.ReplaceAll(s, "\n", " ⏎ ")
    r := []rune(s)
    if max > 1 && len(r) > max {
        return string(r[:max-1]) + "…"
    }
    return s
}

// Ago is a short relative age for list columns.
func Ago(now, t time.Time) string {
    d := now.Sub(t)
    switch {
    case d < time.Minute:
        return "now"
    case d < time.Hour:
        return fmt.Sprintf("%dm ago", int(d.Minutes()))
    case d < 24*time.Hour:
        return fmt.Sprintf("%dh ago", int(d.Hours()))
    default:
        return t.Format("Jan 02")
    }
}
