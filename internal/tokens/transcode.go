package tokens

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ToUnicode replaces every known LaTeX command in text with its glyph. At each
// backslash the longest known command wins, so `\subseteq` is never read as
// `\subset` followed by "eq". Matching is by prefix alone: `\inA` reads as
// `\in` then "A". Commands with no known prefix, such as `\alpha`, pass through.
// Replacement repeats until no known command remains, which makes the function
// idempotent.
func ToUnicode(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	for {
		next, changed := replaceOnce(text)
		if !changed {
			return next
		}
		text = next
	}
}

func replaceOnce(text string) (string, bool) {
	var b strings.Builder
	b.Grow(len(text))
	changed := false
	for i := 0; i < len(text); {
		if text[i] != '\\' {
			b.WriteByte(text[i])
			i++
			continue
		}
		if e, ok := matchAt(text, i); ok {
			b.WriteString(e.Glyph)
			i += len(e.Latex)
			changed = true
			continue
		}
		b.WriteByte('\\')
		i++
	}
	return b.String(), changed
}

func matchAt(text string, i int) (Entry, bool) {
	rest := text[i:]
	for _, e := range commands {
		if strings.HasPrefix(rest, e.Latex) {
			return e, true
		}
	}
	return Entry{}, false
}

// ToLatex replaces every known glyph in text with its canonical LaTeX form in a
// single pass. It must only be applied to glyph text: running it over LaTeX
// source escapes the braces a second time.
func ToLatex(text string) string {
	return toLatex.Replace(text)
}

// ContainsLatex reports whether text still carries a literal backslash.
func ContainsLatex(text string) bool {
	return strings.Contains(text, `\`)
}

// Normalize composes text to NFC so pasted decomposed symbols (∈ followed by
// U+0338) match the table glyphs (∉).
func Normalize(text string) string {
	return norm.NFC.String(text)
}
