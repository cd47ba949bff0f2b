package tokens

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Special names a key with bespoke handling in the structured modes.
type Special string

const (
	SpecialNone      Special = ""
	SpecialBackspace Special = "backspace" // matrix: delete one rune before the cursor
	SpecialRowSep    Special = "rowsep"    // matrix: insert " | "
	SpecialNewline   Special = "newline"   // prooftree: insert "\n" and pulse the field
	SpecialDivider   Special = "divider"   // prooftree: insert a sized divider line
)

// Key is one keypad button.
type Key struct {
	Label   string  // glyph shown on the button and inserted into raw text
	Latex   string  // form spliced into LaTeX output; empty means Label
	Special Special // non-empty for the structured-mode action keys
}

// LatexForm returns the LaTeX spliced for this key in LaTeX mode.
func (k Key) LatexForm() string {
	if k.Latex != "" {
		return k.Latex
	}
	return k.Label
}

// Upper returns the uppercase variant of a single-letter key.
func (k Key) Upper() (Key, bool) {
	r, size := utf8.DecodeRuneInString(k.Label)
	if k.Special != SpecialNone || size != len(k.Label) || !unicode.IsLetter(r) || unicode.IsUpper(r) {
		return k, false
	}
	up := strings.ToUpper(k.Label)
	return Key{Label: up, Latex: up}, true
}

// Group is a titled row of keys on the keypad.
type Group struct {
	Name        string
	Title       string
	Keys        []Key
	Collapsible bool
}

func plain(labels ...string) []Key {
	out := make([]Key, 0, len(labels))
	for _, l := range labels {
		out = append(out, Key{Label: l})
	}
	return out
}

func glyphs(labels ...string) []Key {
	out := make([]Key, 0, len(labels))
	for _, l := range labels {
		k := Key{Label: l}
		if latex, ok := Lookup(l); ok {
			k.Latex = latex
		}
		out = append(out, k)
	}
	return out
}

// Layout returns the shared keypad groups.
func Layout() []Group {
	return []Group{
		{
			Name:  "common",
			Title: "Common",
			Keys:  append(plain("p", "q"), glyphs("~", "→", "∧", "∨", "≡", "[", "]", "(", ")")...),
		},
		{
			Name:  "numbers",
			Title: "Numbers",
			Keys:  plain("7", "8", "9", "4", "5", "6", "1", "2", "3", "0"),
		},
		{
			Name:  "other",
			Title: "Other",
			Keys: glyphs(
				"{", "}", "|", "∪", "∖", "⊆", "∩", "⊂",
				"∈", "∉", "∃", "¬", "⊕", "↔", "↑", "∀",
				"=", "≠", "↓", "≤", "≥", "⊢", "⊨", "⟹", "⟺",
			),
			Collapsible: true,
		},
	}
}

// MatrixKeys are the action keys shown in matrix mode.
func MatrixKeys() Group {
	return Group{
		Name:  "matrix",
		Title: "Matrix",
		Keys: []Key{
			{Label: "⌫", Special: SpecialBackspace},
			{Label: "|", Special: SpecialRowSep},
		},
	}
}

// ProofTreeKeys are the action keys shown in proof-tree mode.
func ProofTreeKeys() Group {
	return Group{
		Name:  "prooftree",
		Title: "Proof tree",
		Keys: []Key{
			{Label: "↵", Special: SpecialNewline},
			{Label: "―", Special: SpecialDivider},
		},
	}
}
