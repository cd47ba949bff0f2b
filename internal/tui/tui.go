package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mathpad/internal/clip"
	"mathpad/internal/config"
	"mathpad/internal/diag"
	"mathpad/internal/editor"
	"mathpad/internal/history"
	"mathpad/internal/logs"
	"mathpad/internal/render"
	"mathpad/internal/tokens"
	"mathpad/internal/tui/state"
	"mathpad/internal/tui/util"
	"mathpad/internal/tui/widgets/diff"
	fieldw "mathpad/internal/tui/widgets/editor"
	"mathpad/internal/tui/widgets/helpoverlay"
	"mathpad/internal/tui/widgets/keypad"
	"mathpad/internal/tui/widgets/statusbar"
	"mathpad/internal/tui/widgets/tagchips"
)

// Params wires the editor screen to the rest of the program.
type Params struct {
	Config    *config.Config
	History   *history.Store
	Watch     <-chan struct{} // signals history written by another process
	Clipboard clip.Writer
	Logger    *slog.Logger
	ExportDir string
	NoColor   bool
}

// Run shows the editor until the user quits. A commit still waiting for its
// debounce is written before Run returns.
func Run(p Params) error {
	m := newModel(p)
	defer m.sess.Close()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	m.sess.Flush()
	return err
}

// ===== Model =====

type toast struct {
	id     int
	notice editor.Notice
}

type toastExpiredMsg struct{ id int }

type pulseDoneMsg struct{}

const pulseFor = 350 * time.Millisecond

type model struct {
	p     Params
	log   *slog.Logger
	keys  keyMap
	sess  *editor.Session
	term  *render.Terminal
	timer *teaTimer
	now   func() time.Time

	ui     state.UIState
	groups []tokens.Group
	hist   historyModel

	rewrite    editor.Rewrite
	hasRewrite bool

	toasts   []toast
	toastSeq int
	noColor  bool
}

func newModel(p Params) *model {
	if p.Config == nil {
		p.Config = config.Default()
	}
	if p.Logger == nil {
		p.Logger = logs.Discard()
	}
	if p.History == nil {
		p.History = history.New(nil, history.Options{Logger: p.Logger})
	}
	noColor := util.NoColor(p.NoColor || p.Config.Render.NoColor)
	term := render.NewTerminal(render.Options{
		Style:     p.Config.Render.Style,
		Formatter: p.Config.Render.Formatter,
		NoColor:   noColor,
	})
	timer := newTeaTimer()
	sess := editor.New(editor.Deps{
		History:   p.History,
		Sink:      term,
		Clipboard: p.Clipboard,
		Timer:     timer,
		Logger:    p.Logger,
	}, p.Config.EditorOptions())
	m := &model{
		p:       p,
		log:     p.Logger.With("component", "tui"),
		keys:    defaultKeyMap(),
		sess:    sess,
		term:    term,
		timer:   timer,
		now:     time.Now,
		ui:      state.UIState{MinCol: 20},
		noColor: noColor,
	}
	m.regroup()
	m.hist.load(p.History.Entries())
	return m
}

func (m *model) Init() tea.Cmd {
	cmds := m.timer.drain()
	if m.p.Watch != nil {
		cmds = append(cmds, waitChange(m.p.Watch))
	}
	return tea.Batch(cmds...)
}

// Update handles all TUI interactions.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.ui = state.Resize(m.ui, v.Width, v.Height)
		m.hist.width = v.Width
	case timerMsg:
		m.timer.fire(v.id)
	case toastExpiredMsg:
		m.dropToast(v.id)
	case pulseDoneMsg:
		m.ui = state.SetPulse(m.ui, false)
	case historyChangedMsg:
		if err := m.p.History.Reload(); err != nil {
			m.log.Warn("history reload failed", "err", err)
		}
		m.hist.load(m.p.History.Entries())
		if m.p.Watch != nil {
			cmds = append(cmds, waitChange(m.p.Watch))
		}
	case tea.KeyMsg:
		if cmd := m.handleKey(v); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, m.settle()...)
	return m, tea.Batch(cmds...)
}

// settle moves what the session produced during this update onto the screen
// and hands pending timers to the runtime.
func (m *model) settle() []tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.sess.Notices() {
		m.toastSeq++
		id := m.toastSeq
		m.toasts = append(m.toasts, toast{id: id, notice: n})
		cmds = append(cmds, tea.Tick(m.p.Config.ToastDuration(), func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }))
	}
	if m.sess.Pulse() {
		m.ui = state.SetPulse(m.ui, true)
		cmds = append(cmds, tea.Tick(pulseFor, func(time.Time) tea.Msg { return pulseDoneMsg{} }))
	}
	if r, ok := m.sess.LastRewrite(); ok {
		m.rewrite, m.hasRewrite = r, true
	}
	m.regroup()
	return append(cmds, m.timer.drain()...)
}

func (m *model) regroup() {
	m.groups = visibleGroups(m.sess.Mode(), m.ui.OtherOpen)
	m.ui = state.ClampKey(m.ui, rowSizes(m.groups))
}

func (m *model) dropToast(id int) {
	out := m.toasts[:0]
	for _, t := range m.toasts {
		if t.id != id {
			out = append(out, t)
		}
	}
	m.toasts = out
}

func (m *model) handleKey(v tea.KeyMsg) tea.Cmd {
	if key.Matches(v, m.keys.Quit) {
		m.sess.Flush()
		return tea.Quit
	}
	// a long-press lasts until the next key arrives
	if m.sess.Holding() {
		m.sess.Release()
	}

	switch m.ui.Overlay {
	case state.HistoryOverlay:
		m.historyKey(v)
		return nil
	case state.HelpOverlay, state.DiffOverlay:
		switch {
		case key.Matches(v, m.keys.Close), key.Matches(v, m.keys.Help), v.String() == "q", v.String() == "?":
			m.ui = state.Close(m.ui)
		case m.ui.Overlay == state.DiffOverlay && key.Matches(v, m.keys.View):
			m.ui = state.ToggleView(m.ui)
			if m.ui.Width > 0 {
				m.ui = state.Resize(m.ui, m.ui.Width, m.ui.Height)
			}
		}
		return nil
	}

	switch {
	case key.Matches(v, m.keys.Help):
		m.ui = state.Open(m.ui, state.HelpOverlay)
	case key.Matches(v, m.keys.Focus):
		if m.ui.Focus == state.FIELD {
			m.sess.Blur()
		}
		m.ui = state.ToggleFocus(m.ui)
	case key.Matches(v, m.keys.Mode):
		m.sess.SetMode(m.sess.Mode().Next())
		m.ui = state.SetNotice(m.ui, "Mode: "+m.sess.Mode().Title())
	case key.Matches(v, m.keys.CopySymbols):
		if err := m.sess.CopySymbols(); err != nil {
			m.log.Debug("copy failed", "err", err)
		}
	case key.Matches(v, m.keys.CopyLatex):
		if err := m.sess.CopyLatex(); err != nil {
			m.log.Debug("copy failed", "err", err)
		}
	case key.Matches(v, m.keys.Clear):
		m.sess.Clear()
		m.ui = state.SetNotice(m.ui, "Cleared")
	case key.Matches(v, m.keys.History):
		m.sess.Flush()
		m.hist.status = ""
		m.hist.load(m.p.History.Entries())
		m.ui = state.Open(m.ui, state.HistoryOverlay)
	case key.Matches(v, m.keys.Diff):
		if !m.hasRewrite {
			m.ui = state.SetNotice(m.ui, "Nothing was cleaned up yet")
			return nil
		}
		m.ui = state.Open(m.ui, state.DiffOverlay)
	case m.ui.Focus == state.KEYPAD:
		m.keypadKey(v)
	default:
		m.fieldKey(v)
	}
	return nil
}

func (m *model) keypadKey(v tea.KeyMsg) {
	rows := rowSizes(m.groups)
	switch {
	case v.String() == "?":
		m.ui = state.Open(m.ui, state.HelpOverlay)
	case key.Matches(v, m.keys.Up):
		m.ui = state.MoveKey(m.ui, -1, 0, rows)
	case key.Matches(v, m.keys.Down):
		m.ui = state.MoveKey(m.ui, 1, 0, rows)
	case key.Matches(v, m.keys.Left):
		m.ui = state.MoveKey(m.ui, 0, -1, rows)
	case key.Matches(v, m.keys.Right):
		m.ui = state.MoveKey(m.ui, 0, 1, rows)
	case key.Matches(v, m.keys.Other):
		m.ui = state.ToggleOther(m.ui)
		m.regroup()
	case key.Matches(v, m.keys.Tap):
		k, ok := keyAt(m.groups, m.ui.Row, m.ui.Col)
		if !ok {
			m.ui = state.ToggleOther(m.ui)
			m.regroup()
			return
		}
		m.sess.Press(k)
		m.sess.Release()
	case key.Matches(v, m.keys.Hold):
		if k, ok := keyAt(m.groups, m.ui.Row, m.ui.Col); ok {
			m.sess.Press(k)
		}
	}
}

func (m *model) fieldKey(v tea.KeyMsg) {
	raw := []rune(m.sess.Raw())
	cur := m.sess.Cursor()
	if v.Paste {
		m.sess.Paste(string(v.Runes))
		return
	}
	switch v.Type {
	case tea.KeyRunes, tea.KeySpace:
		ins := v.Runes
		if v.Type == tea.KeySpace {
			ins = []rune{' '}
		}
		m.sess.Edit(string(raw[:cur])+string(ins)+string(raw[cur:]), cur+len(ins))
	case tea.KeyBackspace:
		if cur > 0 {
			m.sess.Edit(string(raw[:cur-1])+string(raw[cur:]), cur-1)
		}
	case tea.KeyDelete:
		if cur < len(raw) {
			m.sess.Edit(string(raw[:cur])+string(raw[cur+1:]), cur)
		}
	case tea.KeyLeft:
		m.sess.SetCursor(cur - 1)
	case tea.KeyRight:
		m.sess.SetCursor(cur + 1)
	case tea.KeyHome, tea.KeyCtrlA:
		m.sess.SetCursor(lineStart(raw, cur))
	case tea.KeyEnd, tea.KeyCtrlE:
		m.sess.SetCursor(lineEnd(raw, cur))
	case tea.KeyEnter:
		if mode := m.sess.Mode(); mode == editor.Matrix || mode == editor.ProofTree {
			m.sess.Edit(string(raw[:cur])+"\n"+string(raw[cur:]), cur+1)
		}
	}
}

func (m *model) historyKey(v tea.KeyMsg) {
	switch m.hist.update(v) {
	case histClose:
		m.ui = state.Close(m.ui)
	case histReplay:
		e, _ := m.hist.selected()
		m.sess.Replay(e)
		m.ui = state.Close(m.ui)
		m.ui.Focus = state.FIELD
		m.ui = state.SetNotice(m.ui, "Loaded from history")
	case histCopy:
		e, _ := m.hist.selected()
		if m.p.Clipboard == nil {
			m.hist.status = "Copy failed: " + clip.ErrUnsupported.Error()
			return
		}
		if err := m.p.Clipboard.WriteText(e.Latex); err != nil {
			m.hist.status = "Copy failed: " + err.Error()
			return
		}
		m.hist.status = "Copied entry"
	case histExport:
		if path, err := exportHistory(m.p.History, m.p.ExportDir, m.now()); err == nil {
			m.hist.status = "Exported to " + path
		} else {
			m.hist.status = "Export failed: " + err.Error()
		}
	}
}

func lineStart(raw []rune, cur int) int {
	for cur > 0 && raw[cur-1] != '\n' {
		cur--
	}
	return cur
}

func lineEnd(raw []rune, cur int) int {
	for cur < len(raw) && raw[cur] != '\n' {
		cur++
	}
	return cur
}

// ===== Views =====

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	selStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "205", Dark: "213"}).Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

func (m *model) View() string {
	switch m.ui.Overlay {
	case state.HelpOverlay:
		return helpoverlay.NewHelpOverlay().View(m.ui, m.keys.sections())
	case state.HistoryOverlay:
		return m.hist.view(m.now())
	case state.DiffOverlay:
		var b strings.Builder
		b.WriteString(titleStyle.Render("Last cleanup") + "\n\n")
		b.WriteString(diff.NewDiffView(m.noColor).View(m.ui, m.rewrite.Before, m.rewrite.After))
		b.WriteString("\n" + faintStyle.Render("v: unified/side-by-side   esc: back") + "\n")
		return b.String()
	}

	var b strings.Builder
	b.WriteString(m.viewTabs() + "\n")
	b.WriteString(fieldw.NewEditor(m.noColor).View(m.ui, m.sess.Raw(), m.sess.Cursor()) + "\n")
	b.WriteString(tagchips.View(util.ComputeTags(m.sess.Mode(), m.sess.Raw()), m.noColor) + "\n\n")
	b.WriteString(titleStyle.Render("Preview") + "\n")
	b.WriteString(m.term.View() + "\n")
	if m.sess.Mode() == editor.Unicode && tokens.ContainsLatex(m.sess.LatexText()) {
		b.WriteString(faintStyle.Render("LaTeX: "+m.sess.LatexText()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(keypad.NewKeypad(m.noColor).View(m.ui, m.groups) + "\n")
	for _, t := range m.toasts {
		b.WriteString(m.viewToast(t.notice) + "\n")
	}
	b.WriteString(statusbar.NewStatusBar().View(m.ui, statusbar.Info{
		Mode:     m.sess.Mode().Title(),
		Pending:  m.sess.CommitPending(),
		History:  m.p.History.Len(),
		Degraded: m.p.History.Degraded(),
	}) + "\n")
	return b.String()
}

func (m *model) viewTabs() string {
	parts := []string{titleStyle.Render("mathpad")}
	for _, md := range editor.Modes() {
		if md == m.sess.Mode() {
			parts = append(parts, selStyle.Render("["+md.Title()+"]"))
		} else {
			parts = append(parts, faintStyle.Render(" "+md.Title()+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m *model) viewToast(n editor.Notice) string {
	line := fmt.Sprintf("• %s", n.Message)
	if m.noColor {
		return line
	}
	style := lipgloss.NewStyle().Foreground(util.DefaultPalette().Severity(n.Kind))
	if n.Kind == diag.Error {
		style = style.Bold(true)
	}
	return style.Render(line)
}
