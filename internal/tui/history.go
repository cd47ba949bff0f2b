package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mathpad/internal/history"
	"mathpad/internal/tui/util"
)

// historyAction is what the browser asks the editor to do after a key.
type historyAction int

const (
	histNone historyAction = iota
	histReplay
	histCopy
	histExport
	histClose
)

// historyModel is the history overlay: a newest-first list with incremental
// search.
type historyModel struct {
	entries []history.Entry
	sel     int
	width   int
	status  string
	// search state
	searching  bool
	searchBuf  string
	searchIdxs []int
	searchPos  int
}

type historyChangedMsg struct{}

// waitChange turns a store watch channel into messages, one per change.
func waitChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return historyChangedMsg{}
	}
}

func (h *historyModel) load(entries []history.Entry) {
	h.entries = entries
	if h.sel >= len(h.entries) {
		h.sel = len(h.entries) - 1
	}
	if h.sel < 0 {
		h.sel = 0
	}
	if strings.TrimSpace(h.searchBuf) != "" {
		h.computeSearch()
	}
}

func (h *historyModel) selected() (history.Entry, bool) {
	if h.sel < 0 || h.sel >= len(h.entries) {
		return history.Entry{}, false
	}
	return h.entries[h.sel], true
}

func (h *historyModel) update(v tea.KeyMsg) historyAction {
	k := v.String()
	if h.searching {
		switch k {
		case "enter":
			h.searching = false
			h.computeSearch()
			h.jumpToResult(0)
		case "esc":
			h.searching = false
			h.searchBuf = ""
			h.searchIdxs = nil
			h.searchPos = 0
		default:
			if v.Type == tea.KeyBackspace || v.Type == tea.KeyCtrlH {
				if r := []rune(h.searchBuf); len(r) > 0 {
					h.searchBuf = string(r[:len(r)-1])
				}
			} else if v.Type == tea.KeyRunes || v.Type == tea.KeySpace {
				h.searchBuf += string(v.Runes)
			}
		}
		return histNone
	}
	switch k {
	case "esc", "q":
		return histClose
	case "j", "down":
		if h.sel < len(h.entries)-1 {
			h.sel++
		}
	case "k", "up":
		if h.sel > 0 {
			h.sel--
		}
	case "end", "G":
		h.sel = len(h.entries) - 1
		if h.sel < 0 {
			h.sel = 0
		}
	case "home", "g":
		h.sel = 0
	case "/":
		h.searching = true
		h.searchBuf = ""
	case "n", "N":
		if len(h.searchIdxs) == 0 && strings.TrimSpace(h.searchBuf) != "" {
			h.computeSearch()
		}
		if len(h.searchIdxs) > 0 {
			if k == "n" {
				h.jumpToResult(h.searchPos + 1)
			} else {
				h.jumpToResult(h.searchPos - 1)
			}
		}
	case "enter":
		if _, ok := h.selected(); ok {
			return histReplay
		}
	case "y":
		if _, ok := h.selected(); ok {
			return histCopy
		}
	case "S":
		return histExport
	}
	return histNone
}

// computeSearch builds indexes of entries containing searchBuf (case-insensitive)
func (h *historyModel) computeSearch() {
	h.searchIdxs = nil
	h.searchPos = 0
	q := strings.ToLower(strings.TrimSpace(h.searchBuf))
	if q == "" {
		return
	}
	for i, e := range h.entries {
		if strings.Contains(strings.ToLower(e.Latex), q) {
			h.searchIdxs = append(h.searchIdxs, i)
		}
	}
}

func (h *historyModel) jumpToResult(pos int) {
	if len(h.searchIdxs) == 0 {
		return
	}
	if pos < 0 {
		pos = len(h.searchIdxs) - 1
	}
	if pos >= len(h.searchIdxs) {
		pos = 0
	}
	h.searchPos = pos
	h.sel = h.searchIdxs[pos]
}

var highlightStyle = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "228", Dark: "94"}).Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"})

// highlight marks every case-insensitive match of q in s. Matching is done
// per rune so multi-byte glyphs stay intact.
func highlight(s, q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return s
	}
	rs := []rune(s)
	qs := []rune(strings.ToLower(q))
	var b strings.Builder
	for i := 0; i < len(rs); {
		if i+len(qs) <= len(rs) && foldEqual(rs[i:i+len(qs)], qs) {
			b.WriteString(highlightStyle.Render(string(rs[i : i+len(qs)])))
			i += len(qs)
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String()
}

func foldEqual(a, lower []rune) bool {
	for i := range a {
		if unicode.ToLower(a[i]) != lower[i] {
			return false
		}
	}
	return true
}

func (h *historyModel) view(now time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("History (%d)", len(h.entries))) + "\n")
	if len(h.entries) == 0 {
		b.WriteString(faintStyle.Render("Nothing committed yet.") + "\n")
	}
	avail := h.width - 16
	if avail < 20 {
		avail = 60
	}
	q := ""
	if len(h.searchIdxs) > 0 {
		q = h.searchBuf
	}
	for i, e := range h.entries {
		text := util.OneLine(e.Latex, avail)
		if q != "" && containsIndex(h.searchIdxs, i) {
			text = highlight(text, q)
		}
		mark := " "
		if e.Cleared {
			mark = "✕"
		}
		line := fmt.Sprintf("%s %-8s %s", mark, util.Ago(now, e.Time()), text)
		if i == h.sel {
			line = selStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	status := ""
	if h.searching {
		status = fmt.Sprintf("  /%s", h.searchBuf)
	} else if len(h.searchIdxs) > 0 {
		status = fmt.Sprintf("  [%d/%d]", h.searchPos+1, len(h.searchIdxs))
	}
	b.WriteString("\n(j/k select) (enter) load (y) copy (/) search (n/N) next (S) export (esc) back" + status + "\n")
	if strings.TrimSpace(h.status) != "" {
		b.WriteString(faintStyle.Render(h.status) + "\n")
	}
	return b.String()
}

func containsIndex(a []int, x int) bool {
	for _, v := range a {
		if v == x {
			return true
		}
	}
	return false
}

// exportHistory writes the store as JSON under dir with a timestamped name.
func exportHistory(store *history.Store, dir string, now time.Time) (string, error) {
	data, err := store.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "history-"+now.Format("20060102_150405")+".json")
	return path, os.WriteFile(path, data, 0o644)
}
