// Package editor is the input state machine behind the keyboard: it owns the
// raw buffer, derives LaTeX from it per mode, drives the render sink and
// feeds the history through a debounced commit.
//
// A Session is single-writer. Every method, including the callbacks it hands
// to its Timer, must run on one goroutine.
package editor

import (
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"mathpad/internal/clip"
	"mathpad/internal/diag"
	"mathpad/internal/history"
	"mathpad/internal/matrix"
	"mathpad/internal/prooftree"
	"mathpad/internal/render"
	"mathpad/internal/tokens"
)

// Placeholder is rendered when the buffer is empty.
const Placeholder = "(empty)"

const (
	DefaultDebounce = 1500 * time.Millisecond
	DefaultSweep    = 500 * time.Millisecond
	DefaultHold     = 500 * time.Millisecond
)

type Options struct {
	Mode        Mode
	Debounce    time.Duration
	Sweep       time.Duration
	Hold        time.Duration
	MatrixStyle string
}

// Deps are the collaborators a Session calls into. Only Timer is required.
type Deps struct {
	History   *history.Store
	Sink      render.Sink
	Clipboard clip.Writer
	Timer     Timer
	Logger    *slog.Logger
}

// Notice is a transient message for the user.
type Notice struct {
	Kind    diag.Severity
	Message string
}

// Rewrite records text the session changed on its own, e.g. LaTeX cleaned out
// of a paste.
type Rewrite struct {
	Before, After string
}

type Session struct {
	deps Deps
	opts Options
	log  *slog.Logger

	mode   Mode
	raw    string
	cursor int // rune offset into raw
	latex  string

	commitCancel Cancel
	sweepCancel  Cancel
	holdCancel   Cancel

	held      *tokens.Key
	holdFired bool

	notices []Notice
	shown   string // issues currently reported, to avoid repeating them
	pulse   bool
	rewrite *Rewrite
}

// New builds a session in opts.Mode and renders the empty buffer.
func New(deps Deps, opts Options) *Session {
	if deps.Timer == nil {
		deps.Timer = NewManualTimer()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Mode == "" {
		opts.Mode = Unicode
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Sweep <= 0 {
		opts.Sweep = DefaultSweep
	}
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	if opts.MatrixStyle == "" {
		opts.MatrixStyle = matrix.DefaultStyle
	}
	s := &Session{
		deps: deps,
		opts: opts,
		log:  deps.Logger.With("component", "editor"),
		mode: opts.Mode,
	}
	if s.mode == Latex {
		s.startSweep()
	}
	s.refresh()
	return s
}

func (s *Session) Mode() Mode       { return s.mode }
func (s *Session) Raw() string      { return s.raw }
func (s *Session) Cursor() int      { return s.cursor }
func (s *Session) Latex() string    { return s.latex }
func (s *Session) Options() Options { return s.opts }

// SetCursor moves the cursor without editing, clamped to the buffer.
func (s *Session) SetCursor(n int) {
	s.cursor = clamp(n, 0, utf8.RuneCountInString(s.raw))
}

// SetMode switches mode. A pending commit is dropped; entering LaTeX mode
// cleans stray LaTeX from the buffer and starts the sweep.
func (s *Session) SetMode(m Mode) {
	s.cancelCommit()
	if s.mode == Latex && m != Latex {
		s.stopSweep()
	}
	prev := s.mode
	s.mode = m
	s.shown = ""
	if m == Latex {
		s.forceClean()
		s.startSweep()
	}
	s.log.Debug("mode changed", "from", prev, "to", m)
	s.refresh()
}

// Insert applies a keypad key at the cursor.
func (s *Session) Insert(k tokens.Key) {
	switch k.Special {
	case tokens.SpecialBackspace:
		s.deleteBack()
	case tokens.SpecialRowSep:
		s.insertText(" | ")
	case tokens.SpecialNewline:
		s.insertText("\n")
		s.pulse = true
	case tokens.SpecialDivider:
		s.insertText("\n" + prooftree.Divider(s.raw) + "\n")
	default:
		if s.mode == Latex {
			s.spliceLatex(k)
			s.render()
			s.scheduleCommit()
			return
		}
		s.insertText(k.Label)
	}
	s.refresh()
	s.scheduleCommit()
}

// spliceLatex inserts the key's glyph into raw and rebuilds the derived LaTeX
// around the key's own LaTeX form, which is used verbatim.
func (s *Session) spliceLatex(k tokens.Key) {
	rs := []rune(s.raw)
	before, after := string(rs[:s.cursor]), string(rs[s.cursor:])
	s.raw = before + k.Label + after
	s.latex = tokens.ToLatex(before) + k.LatexForm() + tokens.ToLatex(after)
	s.cursor += utf8.RuneCountInString(k.Label)
}

func (s *Session) insertText(text string) {
	rs := []rune(s.raw)
	s.raw = string(rs[:s.cursor]) + text + string(rs[s.cursor:])
	s.cursor += utf8.RuneCountInString(text)
}

func (s *Session) deleteBack() {
	if s.cursor == 0 {
		return
	}
	rs := []rune(s.raw)
	s.raw = string(rs[:s.cursor-1]) + string(rs[s.cursor:])
	s.cursor--
}

// Edit replaces the buffer with text typed into the field.
func (s *Session) Edit(raw string, cursor int) {
	s.raw = raw
	s.SetCursor(cursor)
	s.forceClean()
	s.refresh()
	s.scheduleCommit()
}

// Paste inserts text at the cursor. Text is NFC-normalized first.
func (s *Session) Paste(text string) {
	text = tokens.Normalize(text)
	if text == "" {
		return
	}
	s.insertText(text)
	s.forceClean()
	s.refresh()
	s.scheduleCommit()
}

// Blur is called when the field loses focus.
func (s *Session) Blur() {
	if s.forceClean() {
		s.refresh()
		s.scheduleCommit()
	}
}

// Sweep is the periodic consistency check of LaTeX mode. It reports whether
// it had to rewrite the buffer; without a backslash in raw it does nothing.
func (s *Session) Sweep() bool {
	if s.mode != Latex || !strings.Contains(s.raw, `\`) {
		return false
	}
	before := s.raw
	if !s.forceClean() {
		return false
	}
	s.log.Warn("sweep removed stray latex", "before", before, "after", s.raw)
	s.refresh()
	return true
}

// forceClean turns LaTeX typed or pasted into the LaTeX-mode field back into
// glyphs, keeping the cursor where it can.
func (s *Session) forceClean() bool {
	if s.mode != Latex || !strings.Contains(s.raw, `\`) {
		return false
	}
	before := s.raw
	s.raw = tokens.ToUnicode(s.raw)
	s.SetCursor(s.cursor)
	if s.raw == before {
		return false
	}
	s.rewrite = &Rewrite{Before: before, After: s.raw}
	return true
}

// Clear commits the current content as cleared and empties the buffer.
func (s *Session) Clear() {
	s.cancelCommit()
	if c := s.CommitContent(); strings.TrimSpace(c) != "" && s.deps.History != nil {
		s.deps.History.Add(c, true)
	}
	s.raw, s.latex, s.cursor = "", "", 0
	s.shown = ""
	s.refresh()
}

// Replay restores a history entry and schedules it to be committed again.
func (s *Session) Replay(e history.Entry) {
	s.cancelCommit()
	if s.mode == Latex {
		s.raw = tokens.ToUnicode(e.Latex)
		s.cursor = utf8.RuneCountInString(s.raw)
		s.latex = e.Latex
		s.render()
	} else {
		s.raw = e.Latex
		s.cursor = utf8.RuneCountInString(s.raw)
		s.refresh()
	}
	s.scheduleCommit()
}

// Press starts a key hold. If the hold outlasts Options.Hold, a letter key
// inserts its uppercase form; otherwise Release inserts the key as is.
func (s *Session) Press(k tokens.Key) {
	s.Release()
	s.held = &k
	s.holdFired = false
	if _, ok := k.Upper(); ok {
		s.holdCancel = s.deps.Timer.Schedule(s.opts.Hold, s.holdExpired)
	}
}

func (s *Session) holdExpired() {
	s.holdCancel = nil
	if s.held == nil || s.holdFired {
		return
	}
	up, ok := s.held.Upper()
	if !ok {
		return
	}
	s.holdFired = true
	s.Insert(up)
}

// Release ends a key hold.
func (s *Session) Release() {
	if s.held == nil {
		return
	}
	if s.holdCancel != nil {
		s.holdCancel()
		s.holdCancel = nil
	}
	k, fired := *s.held, s.holdFired
	s.held, s.holdFired = nil, false
	if !fired {
		s.Insert(k)
	}
}

// Holding reports whether a key is currently pressed.
func (s *Session) Holding() bool { return s.held != nil }

// CommitContent is what a commit stores: derived LaTeX in LaTeX mode, the raw
// buffer otherwise.
func (s *Session) CommitContent() string {
	if s.mode == Latex {
		return s.latex
	}
	return s.raw
}

// SymbolText is the glyph text as shown in the field.
func (s *Session) SymbolText() string { return s.raw }

// LatexText is the LaTeX to export for the current buffer.
func (s *Session) LatexText() string {
	switch s.mode {
	case Latex:
		return s.latex
	case Matrix, ProofTree:
		if s.latex != "" {
			return s.latex
		}
	}
	return tokens.ToLatex(s.raw)
}

// CopySymbols puts SymbolText on the clipboard.
func (s *Session) CopySymbols() error { return s.copy("symbols", s.SymbolText()) }

// CopyLatex puts LatexText on the clipboard.
func (s *Session) CopyLatex() error { return s.copy("LaTeX", s.LatexText()) }

func (s *Session) copy(what, text string) error {
	if s.deps.Clipboard == nil {
		s.notify(diag.Error, "no clipboard available")
		return clip.ErrUnsupported
	}
	if err := s.deps.Clipboard.WriteText(text); err != nil {
		s.log.Warn("clipboard write failed", "err", err)
		s.notify(diag.Error, "copy failed: "+err.Error())
		return err
	}
	s.notify(diag.Info, "copied "+what)
	return nil
}

// Render pushes the current projection to the sink. Structural problems and
// sink failures become notices; the sink keeps its previous display on
// failure.
func (s *Session) Render() { s.render() }

func (s *Session) refresh() {
	s.derive()
	s.render()
}

// derive recomputes the derived LaTeX from raw for the current mode.
func (s *Session) derive() {
	switch s.mode {
	case Unicode:
		s.latex = s.raw
	case Latex:
		s.latex = tokens.ToLatex(s.raw)
	case Matrix:
		s.latex, _ = matrix.Build(s.raw, s.opts.MatrixStyle)
	case ProofTree:
		if prooftree.IsBlock(s.raw) {
			s.latex = s.raw
		} else {
			s.latex, _ = prooftree.Build(s.raw)
		}
	}
}

func (s *Session) render() {
	src, mode, issues := s.projection()
	if s.deps.Sink != nil {
		if err := s.deps.Sink.Render(src, mode); err != nil {
			issues = append(issues, diag.Errorf("render", "cannot render: %v", err))
		}
	}
	s.report(issues)
}

// projection picks what the sink shows for the current mode.
func (s *Session) projection() (string, render.DisplayMode, []diag.Diagnostic) {
	if strings.TrimSpace(s.raw) == "" {
		return Placeholder, render.Text, nil
	}
	switch s.mode {
	case Latex:
		if openCommand(s.latex) {
			// a command still being typed is shown as is
			return s.latex, render.Text, nil
		}
		return s.latex, render.Inline, nil
	case Matrix:
		out, diags := matrix.Build(s.raw, s.opts.MatrixStyle)
		if out == "" {
			msg := matrix.FormatHint
			if len(diags) > 0 {
				msg = diags[0].Message
			}
			return msg, render.Text, diags
		}
		return out, render.Block, diags
	case ProofTree:
		if prooftree.IsBlock(s.raw) {
			return s.raw, render.Block, nil
		}
		out, diags := prooftree.Build(s.raw)
		return out, render.Block, diags
	default:
		return s.raw, render.Text, nil
	}
}

// openCommand reports whether src ends in an unescaped backslash.
func openCommand(src string) bool {
	n := 0
	for i := len(src) - 1; i >= 0 && src[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// report turns new issues into notices. The same set of issues is reported
// once, until it changes.
func (s *Session) report(issues []diag.Diagnostic) {
	var key strings.Builder
	for _, d := range issues {
		key.WriteString(d.Code + ":" + d.Message + "\n")
	}
	if key.String() == s.shown {
		return
	}
	s.shown = key.String()
	for _, d := range issues {
		s.notify(d.Severity, d.Message)
	}
}

func (s *Session) notify(kind diag.Severity, msg string) {
	s.notices = append(s.notices, Notice{Kind: kind, Message: msg})
}

// Notices drains the pending notices.
func (s *Session) Notices() []Notice {
	out := s.notices
	s.notices = nil
	return out
}

// Pulse reports and clears the request to pulse the field.
func (s *Session) Pulse() bool {
	p := s.pulse
	s.pulse = false
	return p
}

// LastRewrite drains the most recent automatic rewrite of the buffer.
func (s *Session) LastRewrite() (Rewrite, bool) {
	if s.rewrite == nil {
		return Rewrite{}, false
	}
	r := *s.rewrite
	s.rewrite = nil
	return r, true
}

// CommitPending reports whether a debounced commit is scheduled.
func (s *Session) CommitPending() bool { return s.commitCancel != nil }

func (s *Session) scheduleCommit() {
	s.cancelCommit()
	s.commitCancel = s.deps.Timer.Schedule(s.opts.Debounce, s.commit)
}

func (s *Session) cancelCommit() {
	if s.commitCancel != nil {
		s.commitCancel()
		s.commitCancel = nil
	}
}

// commit reads the buffer as it is when the debounce fires.
func (s *Session) commit() {
	s.commitCancel = nil
	if s.deps.History == nil {
		return
	}
	if s.deps.History.Add(s.CommitContent(), false) {
		s.log.Debug("committed", "mode", s.mode, "entries", s.deps.History.Len())
	}
}

// Flush runs a pending commit now.
func (s *Session) Flush() {
	if s.commitCancel != nil {
		s.cancelCommit()
		s.commit()
	}
}

func (s *Session) startSweep() {
	s.stopSweep()
	s.sweepCancel = s.deps.Timer.Schedule(s.opts.Sweep, s.sweepTick)
}

func (s *Session) stopSweep() {
	if s.sweepCancel != nil {
		s.sweepCancel()
		s.sweepCancel = nil
	}
}

func (s *Session) sweepTick() {
	s.sweepCancel = nil
	if s.mode != Latex {
		return
	}
	s.Sweep()
	s.startSweep()
}

// Close stops every timer the session owns.
func (s *Session) Close() {
	s.cancelCommit()
	s.stopSweep()
	if s.holdCancel != nil {
		s.holdCancel()
		s.holdCancel = nil
	}
	s.held = nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
