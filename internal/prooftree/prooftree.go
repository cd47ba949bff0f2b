// Package prooftree turns a premises/divider/conclusion listing into a
// bussproofs prooftree block.
//
//	P
//	P→Q
//	---
//	Q
package prooftree

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"mathpad/internal/diag"
	"mathpad/internal/tokens"
)

// BlockMarker opens a hand-authored block; such input is passed through as is.
const BlockMarker = `\begin{prooftree}`

// MaxPremises is the largest premise count with its own inference keyword.
const MaxPremises = 5

var dividerRE = regexp.MustCompile(`^[-—─]{3,}$`)

var arity = []string{"Nullary", "Unary", "Binary", "Trinary", "Quaternary", "Quinary"}

// Model is a parsed proof step.
type Model struct {
	Premises   []string
	Conclusion string
	HasDivider bool
}

// IsDivider reports whether a trimmed line separates premises from conclusion.
func IsDivider(line string) bool {
	return dividerRE.MatchString(strings.TrimSpace(line))
}

// IsBlock reports whether raw already holds a hand-written prooftree block.
func IsBlock(raw string) bool {
	return strings.Contains(raw, BlockMarker)
}

// Lines normalizes line endings and returns the trimmed non-empty lines.
func Lines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	var out []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Parse splits raw at the first divider line. Only the first divider counts;
// the first line after it is the conclusion and later lines are ignored.
func Parse(raw string) (Model, []diag.Diagnostic) {
	lines := Lines(raw)
	if len(lines) == 0 {
		return Model{}, nil
	}
	var m Model
	var diags []diag.Diagnostic
	split := -1
	for i, l := range lines {
		if IsDivider(l) {
			split = i
			break
		}
	}
	if split < 0 {
		m.Premises = lines
		diags = append(diags, diag.Warnf("prooftree.divider", "divider not found: add a line of --- before the conclusion"))
	} else {
		m.HasDivider = true
		m.Premises = lines[:split]
		if split+1 < len(lines) {
			m.Conclusion = lines[split+1]
		}
	}
	if len(m.Premises) > MaxPremises {
		diags = append(diags, diag.Warnf("prooftree.premises", "too many premises (%d): more than %d may not display well", len(m.Premises), MaxPremises))
	}
	if len(m.Premises) == 0 {
		diags = append(diags, diag.Warnf("prooftree.premises", "at least one premise required"))
	}
	return m, diags
}

// Keyword returns the bussproofs inference keyword for n premises. Counts
// beyond MaxPremises fall back to Binary.
func Keyword(n int) string {
	if n < 0 || n >= len(arity) {
		return "Binary"
	}
	return arity[n]
}

// LaTeX renders the model as a prooftree environment.
func (m Model) LaTeX() string {
	var b strings.Builder
	b.WriteString(BlockMarker + "\n")
	for _, p := range m.Premises {
		fmt.Fprintf(&b, "\\AxiomC{%s}\n", math(p))
	}
	fmt.Fprintf(&b, "\\%sInfC{%s}\n", Keyword(len(m.Premises)), math(m.Conclusion))
	b.WriteString(`\end{prooftree}`)
	return b.String()
}

func math(line string) string {
	if line == "" {
		return ""
	}
	return "$" + strings.TrimSpace(tokens.ToLatex(line)) + "$"
}

// Build parses raw and renders it. Blank input yields an empty string and no
// diagnostics.
func Build(raw string) (string, []diag.Diagnostic) {
	if len(Lines(raw)) == 0 {
		return "", nil
	}
	m, diags := Parse(raw)
	return m.LaTeX(), diags
}

// Divider returns a dash line two runes longer than the longest existing
// non-divider line, never shorter than three.
func Divider(raw string) string {
	longest := 1
	for _, l := range Lines(raw) {
		if IsDivider(l) {
			continue
		}
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	n := longest + 2
	if n < 3 {
		n = 3
	}
	return strings.Repeat("-", n)
}
