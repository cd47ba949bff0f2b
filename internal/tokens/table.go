// Package tokens holds the fixed symbol vocabulary shared by the transcoder, the
// keypad and the structured-input builders.
package tokens

import (
	"sort"
	"strings"
)

// Entry pairs a LaTeX command with the glyph it stands for.
type Entry struct {
	Latex string
	Glyph string
}

// canonical is the glyph -> LaTeX direction. Alphabetic commands carry the
// trailing separator space; the escaped braces do not.
var canonical = []Entry{
	{`\sim `, "~"},
	{`\to `, "→"},
	{`\land `, "∧"},
	{`\lor `, "∨"},
	{`\equiv `, "≡"},
	{`\{`, "{"},
	{`\}`, "}"},
	{`\cup `, "∪"},
	{`\setminus `, "∖"},
	{`\subseteq `, "⊆"},
	{`\cap `, "∩"},
	{`\subset `, "⊂"},
	{`\in `, "∈"},
	{`\notin `, "∉"},
	{`\exists `, "∃"},
	{`\neg `, "¬"},
	{`\oplus `, "⊕"},
	{`\leftrightarrow `, "↔"},
	{`\uparrow `, "↑"},
	{`\forall `, "∀"},
	{`\neq `, "≠"},
	{`\downarrow `, "↓"},
	{`\leq `, "≤"},
	{`\geq `, "≥"},
	{`\vdash `, "⊢"},
	{`\models `, "⊨"},
	{`\Longrightarrow `, "⟹"},
	{`\Longleftrightarrow `, "⟺"},
}

var (
	// commands is the LaTeX -> glyph direction, longest command first.
	commands []Entry
	byGlyph  = map[string]string{}
	toLatex  *strings.Replacer
)

func init() {
	pairs := make([]string, 0, 2*len(canonical))
	for _, e := range canonical {
		byGlyph[e.Glyph] = e.Latex
		pairs = append(pairs, e.Glyph, e.Latex)

		commands = append(commands, e)
		if bare := strings.TrimRight(e.Latex, " "); bare != e.Latex {
			commands = append(commands, Entry{Latex: bare, Glyph: e.Glyph})
		}
	}
	sort.SliceStable(commands, func(i, j int) bool {
		if len(commands[i].Latex) != len(commands[j].Latex) {
			return len(commands[i].Latex) > len(commands[j].Latex)
		}
		return commands[i].Latex < commands[j].Latex
	})
	toLatex = strings.NewReplacer(pairs...)
}

// Entries returns the canonical table sorted by LaTeX command.
func Entries() []Entry {
	out := append([]Entry(nil), canonical...)
	sort.Slice(out, func(i, j int) bool { return out[i].Latex < out[j].Latex })
	return out
}

// Commands returns every accepted LaTeX spelling, longest first.
func Commands() []Entry {
	return append([]Entry(nil), commands...)
}

// Lookup returns the canonical LaTeX form of glyph.
func Lookup(glyph string) (string, bool) {
	l, ok := byGlyph[glyph]
	return l, ok
}
