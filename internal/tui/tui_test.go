package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mathpad/internal/clip"
	"mathpad/internal/config"
	"mathpad/internal/editor"
	"mathpad/internal/history"
	"mathpad/internal/kvstore"
	"mathpad/internal/tui/state"
)

type fixture struct {
	m      *model
	store  *history.Store
	copied []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: history.New(kvstore.NewMemory(), history.Options{})}
	cfg := config.Default()
	f.m = newModel(Params{
		Config:    cfg,
		History:   f.store,
		Clipboard: clip.Func(func(s string) error { f.copied = append(f.copied, s); return nil }),
		ExportDir: t.TempDir(),
		NoColor:   true,
	})
	f.m.Init()
	return f
}

func (f *fixture) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		f.m.Update(msg)
	}
}

// fireAll runs every task pending right now, oldest first. Tasks they
// schedule wait for the next call.
func (f *fixture) fireAll() {
	ids := make([]int, 0, len(f.m.timer.tasks))
	for id := range f.m.timer.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		f.send(timerMsg{id: id})
	}
}

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestTypingCommitsAfterDebounce(t *testing.T) {
	f := newFixture(t)
	f.send(runes("p→q"))
	if got := f.m.sess.Raw(); got != "p→q" {
		t.Fatalf("raw %q", got)
	}
	if !f.m.sess.CommitPending() || f.store.Len() != 0 {
		t.Fatalf("expected a pending commit and empty history")
	}
	f.fireAll()
	if head, ok := f.store.Head(); !ok || head.Latex != "p→q" {
		t.Fatalf("expected committed entry, got %+v", head)
	}
}

func TestFieldCursorEditing(t *testing.T) {
	f := newFixture(t)
	f.send(runes("pq"), keyType(tea.KeyLeft), runes("∧"), keyType(tea.KeyHome), keyType(tea.KeyDelete), keyType(tea.KeyEnd), keyType(tea.KeyBackspace))
	if got := f.m.sess.Raw(); got != "∧" {
		t.Fatalf("raw %q", got)
	}
}

func TestEnterAddsLineOnlyInStructuredModes(t *testing.T) {
	f := newFixture(t)
	f.send(runes("a"), keyType(tea.KeyEnter))
	if f.m.sess.Raw() != "a" {
		t.Fatalf("enter must not add a line in unicode mode")
	}
	f.m.sess.SetMode(editor.Matrix)
	f.send(keyType(tea.KeyEnter), runes("b"))
	if f.m.sess.Raw() != "a\nb" {
		t.Fatalf("raw %q", f.m.sess.Raw())
	}
}

func TestKeypadTap(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyTab))
	if f.m.ui.Focus != state.KEYPAD {
		t.Fatalf("expected keypad focus")
	}
	f.send(keyType(tea.KeyEnter), keyType(tea.KeyRight), keyType(tea.KeyRight), keyType(tea.KeyEnter))
	if got := f.m.sess.Raw(); got != "p~" {
		t.Fatalf("raw %q", got)
	}
}

func TestKeypadLongPressUppercases(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyTab), runes("L"))
	if !f.m.sess.Holding() {
		t.Fatalf("expected a held key")
	}
	f.fireAll()
	if got := f.m.sess.Raw(); got != "P" {
		t.Fatalf("raw %q", got)
	}
	f.send(keyType(tea.KeyDown))
	if f.m.sess.Holding() || f.m.sess.Raw() != "P" {
		t.Fatalf("next key must release without inserting again, raw %q", f.m.sess.Raw())
	}
}

func TestKeypadQuickReleaseKeepsCase(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyTab), runes("L"), keyType(tea.KeyRight))
	if got := f.m.sess.Raw(); got != "p" {
		t.Fatalf("raw %q", got)
	}
}

func TestOtherGroupExpands(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyTab), keyType(tea.KeyDown), keyType(tea.KeyDown))
	if f.m.groups[2].Keys != nil {
		t.Fatalf("other group should start collapsed")
	}
	f.send(keyType(tea.KeyEnter))
	if !f.m.ui.OtherOpen || len(f.m.groups[2].Keys) == 0 {
		t.Fatalf("expected other group open")
	}
	f.send(keyType(tea.KeyEnter))
	if got := f.m.sess.Raw(); got != "{" {
		t.Fatalf("raw %q", got)
	}
}

func TestModeCycleSwapsActionKeys(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyCtrlT))
	if f.m.sess.Mode() != editor.Latex {
		t.Fatalf("mode %s", f.m.sess.Mode())
	}
	f.send(keyType(tea.KeyCtrlT))
	if f.m.groups[0].Name != "matrix" {
		t.Fatalf("expected matrix keys first, got %q", f.m.groups[0].Name)
	}
	f.send(keyType(tea.KeyCtrlT))
	if f.m.groups[0].Name != "prooftree" {
		t.Fatalf("expected proof-tree keys first, got %q", f.m.groups[0].Name)
	}
}

func TestNewlineKeyPulses(t *testing.T) {
	f := newFixture(t)
	f.m.sess.SetMode(editor.ProofTree)
	f.send(runes("P"), keyType(tea.KeyTab), keyType(tea.KeyEnter))
	if got := f.m.sess.Raw(); got != "P\n" {
		t.Fatalf("raw %q", got)
	}
	if !f.m.ui.Pulse {
		t.Fatalf("expected pulse")
	}
	f.send(pulseDoneMsg{})
	if f.m.ui.Pulse {
		t.Fatalf("expected pulse to end")
	}
}

func TestLatexPasteIsCleanedAndDiffable(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyCtrlT))
	f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(`p \land q`), Paste: true})
	if strings.Contains(f.m.sess.Raw(), `\`) {
		t.Fatalf("paste not cleaned: %q", f.m.sess.Raw())
	}
	if !f.m.hasRewrite || f.m.rewrite.Before != `p \land q` {
		t.Fatalf("expected recorded rewrite, got %+v", f.m.rewrite)
	}
	f.send(keyType(tea.KeyCtrlD))
	if f.m.ui.Overlay != state.DiffOverlay {
		t.Fatalf("expected diff overlay")
	}
	if !strings.Contains(f.m.View(), "Last cleanup") {
		t.Fatalf("diff view missing title")
	}
	f.send(runes("v"))
	if f.m.ui.View != state.SideBySide {
		t.Fatalf("expected side-by-side")
	}
	f.send(keyType(tea.KeyEsc))
	if f.m.ui.Overlay != state.NoOverlay {
		t.Fatalf("expected overlay closed")
	}
}

func TestDiffWithoutRewrite(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyCtrlD))
	if f.m.ui.Overlay != state.NoOverlay || f.m.ui.Notice == "" {
		t.Fatalf("expected notice instead of overlay")
	}
}

func TestCopyShowsToastUntilExpiry(t *testing.T) {
	f := newFixture(t)
	f.send(runes("¬p"), keyType(tea.KeyCtrlY), keyType(tea.KeyCtrlG))
	if len(f.copied) != 2 || f.copied[0] != "¬p" || !strings.HasPrefix(f.copied[1], `\neg`) {
		t.Fatalf("copied %q", f.copied)
	}
	if len(f.m.toasts) != 2 {
		t.Fatalf("expected two toasts, got %d", len(f.m.toasts))
	}
	f.send(toastExpiredMsg{id: f.m.toasts[0].id})
	if len(f.m.toasts) != 1 {
		t.Fatalf("expected one toast left")
	}
}

func TestClearRecordsCleared(t *testing.T) {
	f := newFixture(t)
	f.send(runes("x"), keyType(tea.KeyCtrlX))
	head, ok := f.store.Head()
	if !ok || !head.Cleared || head.Latex != "x" || f.m.sess.Raw() != "" {
		t.Fatalf("unexpected state: %+v raw=%q", head, f.m.sess.Raw())
	}
}

func TestHistoryOverlayReplay(t *testing.T) {
	f := newFixture(t)
	f.store.Add("a", false)
	f.store.Add("b", false)
	f.send(keyType(tea.KeyCtrlO))
	if f.m.ui.Overlay != state.HistoryOverlay || len(f.m.hist.entries) != 2 {
		t.Fatalf("expected history overlay with 2 entries")
	}
	f.send(runes("j"), keyType(tea.KeyEnter))
	if f.m.sess.Raw() != "a" || f.m.ui.Overlay != state.NoOverlay {
		t.Fatalf("expected replay of a, raw %q", f.m.sess.Raw())
	}
}

func TestHistoryOverlayFlushesPending(t *testing.T) {
	f := newFixture(t)
	f.send(runes("z"), keyType(tea.KeyCtrlO))
	if f.store.Len() != 1 || f.m.hist.entries[0].Latex != "z" {
		t.Fatalf("expected pending commit flushed into the list")
	}
}

func TestHistorySearchCopyExport(t *testing.T) {
	f := newFixture(t)
	f.store.Add("p → q", false)
	f.store.Add("r", false)
	f.store.Add("Q ∧ p", false)
	f.send(keyType(tea.KeyCtrlO), runes("/"), runes("q"), keyType(tea.KeyEnter))
	if f.m.hist.sel != 0 || len(f.m.hist.searchIdxs) != 2 {
		t.Fatalf("search: sel=%d idxs=%v", f.m.hist.sel, f.m.hist.searchIdxs)
	}
	f.send(runes("n"))
	if f.m.hist.sel != 2 {
		t.Fatalf("n: sel=%d", f.m.hist.sel)
	}
	f.send(runes("N"))
	if f.m.hist.sel != 0 {
		t.Fatalf("N: sel=%d", f.m.hist.sel)
	}
	f.send(runes("y"))
	if len(f.copied) != 1 || f.copied[0] != "Q ∧ p" {
		t.Fatalf("copied %q", f.copied)
	}
	f.send(runes("S"))
	if !strings.HasPrefix(f.m.hist.status, "Exported to ") {
		t.Fatalf("status %q", f.m.hist.status)
	}
	path := strings.TrimPrefix(f.m.hist.status, "Exported to ")
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), `"latex": "r"`) {
		t.Fatalf("export %q: %v", data, err)
	}
	if filepath.Dir(path) != f.m.p.ExportDir {
		t.Fatalf("export went to %s", path)
	}
}

func TestHistoryChangedReloads(t *testing.T) {
	kv := kvstore.NewMemory()
	mine := history.New(kv, history.Options{})
	f := newFixture(t)
	f.m.p.History = mine
	other := history.New(kv, history.Options{})
	other.Add("from elsewhere", false)
	f.send(historyChangedMsg{})
	if mine.Len() != 1 || len(f.m.hist.entries) != 1 {
		t.Fatalf("expected reload to pick up the other writer")
	}
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t)
	f.send(keyType(tea.KeyF1))
	if f.m.ui.Overlay != state.HelpOverlay || !strings.Contains(f.m.View(), "Keypad:") {
		t.Fatalf("expected help overlay")
	}
	f.send(runes("q"))
	if f.m.ui.Overlay != state.NoOverlay {
		t.Fatalf("expected help closed")
	}
}

func TestViewShowsEditor(t *testing.T) {
	f := newFixture(t)
	f.send(tea.WindowSizeMsg{Width: 80, Height: 30}, runes("p∧q"))
	out := f.m.View()
	for _, want := range []string{"[Unicode]", "p∧q▏", "[Glyphs 1]", "Preview", `LaTeX: p\land q`, "[FIELD]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestQuitFlushes(t *testing.T) {
	f := newFixture(t)
	f.send(runes("w"))
	_, cmd := f.m.Update(keyType(tea.KeyCtrlC))
	if cmd == nil || f.store.Len() != 1 {
		t.Fatalf("expected quit with flushed commit")
	}
}

func TestTimerCancel(t *testing.T) {
	tm := newTeaTimer()
	ran := 0
	cancel := tm.Schedule(time.Second, func() { ran++ })
	tm.Schedule(time.Second, func() { ran += 10 })
	if len(tm.drain()) != 2 || tm.pending() != 2 {
		t.Fatalf("expected two queued ticks")
	}
	cancel()
	if tm.fire(1) {
		t.Fatalf("cancelled task must not run")
	}
	if !tm.fire(2) || tm.fire(2) {
		t.Fatalf("task must run exactly once")
	}
	if ran != 10 {
		t.Fatalf("ran=%d", ran)
	}
}

func TestHighlightIsRuneSafe(t *testing.T) {
	if got := highlight("P → q", "→ Q"); !strings.Contains(got, "→ q") {
		t.Fatalf("got %q", got)
	}
}

func TestKeypadText(t *testing.T) {
	out := KeypadText(editor.Matrix)
	if !strings.HasPrefix(out, "Matrix") || !strings.Contains(out, "⟺") {
		t.Fatalf("unexpected keypad:\n%s", out)
	}
}
