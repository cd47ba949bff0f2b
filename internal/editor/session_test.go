package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathpad/internal/clip"
	"mathpad/internal/diag"
	"mathpad/internal/history"
	"mathpad/internal/kvstore"
	"mathpad/internal/render"
	"mathpad/internal/tokens"
)

type rendered struct {
	src  string
	mode render.DisplayMode
}

type fakeSink struct {
	calls []rendered
	fail  error
}

func (f *fakeSink) Render(src string, mode render.DisplayMode) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, rendered{src, mode})
	return nil
}

func (f *fakeSink) last() rendered {
	if len(f.calls) == 0 {
		return rendered{}
	}
	return f.calls[len(f.calls)-1]
}

type fixture struct {
	s     *Session
	timer *ManualTimer
	sink  *fakeSink
	hist  *history.Store
	clip  *string
}

func newFixture(t *testing.T, mode Mode) *fixture {
	t.Helper()
	f := &fixture{
		timer: NewManualTimer(),
		sink:  &fakeSink{},
		hist:  history.New(kvstore.NewMemory(), history.Options{}),
		clip:  new(string),
	}
	f.s = New(Deps{
		History:   f.hist,
		Sink:      f.sink,
		Timer:     f.timer,
		Clipboard: clip.Func(func(s string) error { *f.clip = s; return nil }),
	}, Options{Mode: mode})
	return f
}

var (
	keyP   = tokens.Key{Label: "p"}
	keyTo  = tokens.Key{Label: "→", Latex: `\to `}
	keyNeg = tokens.Key{Label: "¬", Latex: `\neg `}
)

func TestLatexInsertSplicesKeyForm(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit("p¬q", 1)

	f.s.Insert(keyTo)
	assert.Equal(t, "p→¬q", f.s.Raw())
	assert.Equal(t, `p\to \neg q`, f.s.Latex())
	assert.Equal(t, 2, f.s.Cursor())

	// the key's own form is used verbatim, not its canonical glyph mapping
	f.s.Insert(tokens.Key{Label: "∧", Latex: `\wedge `})
	assert.Equal(t, "p→∧¬q", f.s.Raw())
	assert.Equal(t, `p\to \wedge \neg q`, f.s.Latex())
	assert.Equal(t, rendered{`p\to \wedge \neg q`, render.Inline}, f.sink.last())
}

func TestUnicodeInsertMirrorsRaw(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Insert(keyP)
	f.s.Insert(keyTo)
	assert.Equal(t, "p→", f.s.Raw())
	assert.Equal(t, f.s.Raw(), f.s.Latex())
	assert.Equal(t, rendered{"p→", render.Text}, f.sink.last())
	assert.Equal(t, `p\to `, f.s.LatexText())
}

func TestMatrixKeys(t *testing.T) {
	f := newFixture(t, Matrix)
	f.s.Edit("1 2", 3)
	rowSep := tokens.MatrixKeys().Keys[1]
	back := tokens.MatrixKeys().Keys[0]

	f.s.Insert(rowSep)
	assert.Equal(t, "1 2 | ", f.s.Raw())
	f.s.Insert(tokens.Key{Label: "3"})
	f.s.Insert(tokens.Key{Label: " "})
	f.s.Insert(tokens.Key{Label: "4"})
	assert.Equal(t, "\\begin{bmatrix}\n  1 & 2 \\\\\n  3 & 4\n\\end{bmatrix}", f.s.Latex())
	assert.Equal(t, render.Block, f.sink.last().mode)

	f.s.Insert(back)
	assert.Equal(t, "1 2 | 3 ", f.s.Raw())
	assert.Empty(t, f.s.Latex())

	f.s.SetCursor(0)
	f.s.Insert(back)
	assert.Equal(t, "1 2 | 3 ", f.s.Raw(), "backspace at start is a no-op")
}

func TestMatrixIrregularNotice(t *testing.T) {
	f := newFixture(t, Matrix)
	f.s.Edit("1 2 | 3", 7)
	assert.Equal(t, rendered{"row 2: expected 2 cells, got 1", render.Text}, f.sink.last())
	notices := f.s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, diag.Warning, notices[0].Kind)

	// unchanged issues are not repeated
	f.s.Edit("1 2 | 3", 7)
	assert.Empty(t, f.s.Notices())
}

func TestMatrixFormatHint(t *testing.T) {
	f := newFixture(t, Matrix)
	f.s.Edit(" | ", 3)
	assert.Equal(t, rendered{"format: 1 2 3 | 4 5 6  (rows split by | or newline, cells by spaces)", render.Text}, f.sink.last())
	f.s.Edit("", 0)
	assert.Equal(t, rendered{Placeholder, render.Text}, f.sink.last())
}

func TestProofTreeKeys(t *testing.T) {
	f := newFixture(t, ProofTree)
	f.s.Edit("P→Q", 3)
	newline := tokens.ProofTreeKeys().Keys[0]
	divider := tokens.ProofTreeKeys().Keys[1]

	f.s.Insert(newline)
	assert.True(t, f.s.Pulse())
	assert.False(t, f.s.Pulse(), "pulse is cleared once read")
	f.s.Insert(tokens.Key{Label: "P"})
	f.s.Insert(divider)
	assert.Equal(t, "P→Q\nP\n-----\n", f.s.Raw())
	assert.False(t, f.s.Pulse())

	f.s.Insert(tokens.Key{Label: "Q"})
	want := "\\begin{prooftree}\n\\AxiomC{$P\\to Q$}\n\\AxiomC{$P$}\n\\BinaryInfC{$Q$}\n\\end{prooftree}"
	assert.Equal(t, want, f.s.Latex())
	assert.Equal(t, rendered{want, render.Block}, f.sink.last())
}

func TestProofTreeHandAuthoredBlock(t *testing.T) {
	f := newFixture(t, ProofTree)
	block := "\\begin{prooftree}\n\\AxiomC{A}\n\\UnaryInfC{B}\n\\end{prooftree}"
	f.s.Paste(block)
	assert.Equal(t, rendered{block, render.Block}, f.sink.last())
	assert.Equal(t, block, f.s.LatexText())
}

func TestDebounceCoalescesEdits(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit("a", 1)
	f.timer.Advance(time.Second)
	f.s.Edit("ab", 2)
	f.timer.Advance(time.Second)
	assert.Zero(t, f.hist.Len())
	assert.True(t, f.s.CommitPending())

	f.timer.Advance(600 * time.Millisecond)
	require.Equal(t, 1, f.hist.Len())
	head, _ := f.hist.Head()
	assert.Equal(t, "ab", head.Latex)
	assert.False(t, head.Cleared)
	assert.False(t, f.s.CommitPending())
}

func TestModeChangeCancelsCommit(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit("abc", 3)
	f.s.SetMode(Matrix)
	f.timer.Advance(5 * time.Second)
	assert.Zero(t, f.hist.Len())
}

func TestClearCommitsAndCancels(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit("¬p", 2)
	f.s.Clear()
	assert.Empty(t, f.s.Raw())
	assert.Empty(t, f.s.Latex())
	assert.Equal(t, rendered{Placeholder, render.Text}, f.sink.last())

	f.timer.Advance(5 * time.Second)
	require.Equal(t, 1, f.hist.Len())
	head, _ := f.hist.Head()
	assert.Equal(t, history.Entry{Latex: `\neg p`, Cleared: true, Timestamp: head.Timestamp}, head)

	f.s.Clear()
	assert.Equal(t, 1, f.hist.Len(), "clearing an empty field commits nothing")
}

func TestSweepIsIdempotentOnCleanText(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit("p→q", 3)
	f.s.Notices()
	calls := len(f.sink.calls)

	assert.False(t, f.s.Sweep())
	assert.False(t, f.s.Sweep())
	assert.Equal(t, "p→q", f.s.Raw())
	assert.Empty(t, f.s.Notices())
	assert.Equal(t, calls, len(f.sink.calls))
	_, rewritten := f.s.LastRewrite()
	assert.False(t, rewritten)
}

func TestSweepCleansLeakedLatex(t *testing.T) {
	f := newFixture(t, Latex)
	// a key whose label is LaTeX source bypasses the input hooks
	f.s.Insert(tokens.Key{Label: `\neg`, Latex: `\neg `})
	assert.Equal(t, `\neg`, f.s.Raw())

	f.timer.Advance(500 * time.Millisecond)
	assert.Equal(t, "¬", f.s.Raw())
	assert.Equal(t, `\neg `, f.s.Latex())
	rw, ok := f.s.LastRewrite()
	require.True(t, ok)
	assert.Equal(t, Rewrite{Before: `\neg`, After: "¬"}, rw)
}

func TestSweepKeepsRunningAndStopsOutsideLatex(t *testing.T) {
	f := newFixture(t, Latex)
	f.timer.Advance(3 * time.Second)
	f.s.Insert(tokens.Key{Label: `\lor`})
	f.timer.Advance(500 * time.Millisecond)
	assert.Equal(t, "∨", f.s.Raw())

	f.s.SetMode(Unicode)
	f.timer.Advance(2 * time.Second)
	assert.Zero(t, f.timer.Pending())

	f.s.Insert(tokens.Key{Label: `\land`})
	f.timer.Advance(2 * time.Second)
	assert.Equal(t, `∨\land`, f.s.Raw())
}

func TestSweepIgnoresUnknownCommands(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit(`\alpha`, 6)
	assert.Equal(t, `\alpha`, f.s.Raw())
	assert.False(t, f.s.Sweep())
}

func TestEditInLatexModeCleansImmediately(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit(`p \to q`, 7)
	assert.Equal(t, "p →q", f.s.Raw())
	assert.Equal(t, 4, f.s.Cursor())
	assert.Equal(t, `p \to q`, f.s.Latex())
}

func TestEnteringLatexModeCleans(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit(`\forall x`, 9)
	assert.Equal(t, `\forall x`, f.s.Raw())
	f.s.SetMode(Latex)
	assert.Equal(t, "∀x", f.s.Raw())
	assert.Equal(t, `\forall x`, f.s.Latex())
}

func TestPasteNormalizes(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit("ab", 1)
	f.s.Paste("x\u2208\u0338S")
	assert.Equal(t, "ax\u2209Sb", f.s.Raw())
	assert.Equal(t, 4, f.s.Cursor())
}

func TestPasteInLatexMode(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Paste(`A \cup B`)
	assert.Equal(t, "A ∪B", f.s.Raw())
	assert.Equal(t, `A \cup B`, f.s.Latex())
}

func TestBlur(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit("p", 1)
	f.timer.Advance(2 * time.Second)
	f.s.Blur()
	assert.False(t, f.s.CommitPending(), "blur without stray LaTeX changes nothing")
}

func TestReplay(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Replay(history.Entry{Latex: `\neg p \lor q`})
	assert.Equal(t, "¬p ∨q", f.s.Raw())
	assert.Equal(t, `\neg p \lor q`, f.s.Latex())
	f.timer.Advance(2 * time.Second)
	head, ok := f.hist.Head()
	require.True(t, ok)
	assert.Equal(t, `\neg p \lor q`, head.Latex)

	g := newFixture(t, Matrix)
	g.s.Replay(history.Entry{Latex: "1 2 | 3 4"})
	assert.Equal(t, "1 2 | 3 4", g.s.Raw())
	assert.Contains(t, g.s.Latex(), `\begin{bmatrix}`)
}

func TestHoldInsertsUppercase(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Press(keyP)
	f.timer.Advance(600 * time.Millisecond)
	assert.Equal(t, "P", f.s.Raw())
	f.s.Release()
	assert.Equal(t, "P", f.s.Raw())
	assert.False(t, f.s.Holding())
}

func TestTapInsertsKey(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Press(keyP)
	f.timer.Advance(100 * time.Millisecond)
	f.s.Release()
	f.timer.Advance(time.Second)
	assert.Equal(t, "p", f.s.Raw())
}

func TestHoldOnSymbolInsertsOnRelease(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Press(keyNeg)
	f.timer.Advance(time.Second)
	assert.Empty(t, f.s.Raw())
	f.s.Release()
	assert.Equal(t, "¬", f.s.Raw())
	assert.Equal(t, `\neg `, f.s.Latex())
}

func TestRenderFailureIsReported(t *testing.T) {
	f := newFixture(t, Latex)
	f.sink.fail = errors.New("typeset failed")
	f.s.Edit("p", 1)
	notices := f.s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, diag.Error, notices[0].Kind)
	assert.Contains(t, notices[0].Message, "typeset failed")
	assert.Equal(t, "p", f.s.Raw(), "buffer survives a render failure")
}

func TestOpenCommandIsNotARenderError(t *testing.T) {
	term := render.NewTerminal(render.Options{NoColor: true})
	timer := NewManualTimer()
	s := New(Deps{Sink: term, Timer: timer}, Options{Mode: Latex})

	s.Edit(`p \`, 3)
	assert.Empty(t, s.Notices(), "a lone trailing backslash is a command being typed")
	src, mode := term.Source()
	assert.Equal(t, `p \`, src)
	assert.Equal(t, render.Text, mode)

	s.Edit(`p \to`, 5)
	assert.Empty(t, s.Notices())
	assert.Equal(t, "p →", s.Raw())
	src, mode = term.Source()
	assert.Equal(t, `p \to `, src)
	assert.Equal(t, render.Inline, mode)

	s.Edit(`p \\`, 4)
	_, mode = term.Source()
	assert.Equal(t, render.Inline, mode, "an escaped backslash is complete")
}

func TestCopy(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit("¬p", 2)
	require.NoError(t, f.s.CopyLatex())
	assert.Equal(t, `\neg p`, *f.clip)
	require.NoError(t, f.s.CopySymbols())
	assert.Equal(t, "¬p", *f.clip)
	notices := f.s.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, "copied LaTeX", notices[0].Message)
}

func TestCopyFailureIsReported(t *testing.T) {
	boom := errors.New("no display")
	s := New(Deps{Clipboard: clip.Func(func(string) error { return boom })}, Options{})
	assert.ErrorIs(t, s.CopySymbols(), boom)
	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, diag.Error, notices[0].Kind)
}

func TestCommitContentPerMode(t *testing.T) {
	f := newFixture(t, Latex)
	f.s.Edit("¬p", 2)
	assert.Equal(t, `\neg p`, f.s.CommitContent())
	f.s.SetMode(ProofTree)
	assert.Equal(t, "¬p", f.s.CommitContent())
}

func TestFlush(t *testing.T) {
	f := newFixture(t, Unicode)
	f.s.Edit("x", 1)
	f.s.Flush()
	assert.Equal(t, 1, f.hist.Len())
	assert.False(t, f.s.CommitPending())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" LaTeX ")
	require.NoError(t, err)
	assert.Equal(t, Latex, m)
	_, err = ParseMode("tex")
	assert.Error(t, err)
	assert.Equal(t, Latex, Unicode.Next())
	assert.Equal(t, Unicode, ProofTree.Next())
}
