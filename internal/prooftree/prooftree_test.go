package prooftree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModusPonens(t *testing.T) {
	m, diags := Parse("P\nP→Q\n---\nQ")
	require.Empty(t, diags)
	assert.Equal(t, []string{"P", "P→Q"}, m.Premises)
	assert.Equal(t, "Q", m.Conclusion)
	assert.True(t, m.HasDivider)

	want := "\\begin{prooftree}\n" +
		"\\AxiomC{$P$}\n" +
		"\\AxiomC{$P\\to Q$}\n" +
		"\\BinaryInfC{$Q$}\n" +
		"\\end{prooftree}"
	assert.Equal(t, want, m.LaTeX())
}

func TestTooManyPremisesFallsBackToBinary(t *testing.T) {
	out, diags := Build("A\nB\nC\nD\nE\nF\n---\nZ")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "too many premises")
	assert.Contains(t, out, `\BinaryInfC{$Z$}`)
	assert.Equal(t, 6, strings.Count(out, `\AxiomC`))
}

func TestKeywords(t *testing.T) {
	want := map[int]string{0: "Nullary", 1: "Unary", 2: "Binary", 3: "Trinary", 4: "Quaternary", 5: "Quinary", 6: "Binary", 9: "Binary"}
	for n, kw := range want {
		assert.Equal(t, kw, Keyword(n), "n=%d", n)
	}
}

func TestMissingDivider(t *testing.T) {
	m, diags := Parse("P\nQ")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "divider not found")
	assert.Equal(t, []string{"P", "Q"}, m.Premises)
	assert.Empty(t, m.Conclusion)
	assert.Contains(t, m.LaTeX(), `\BinaryInfC{}`)
}

func TestBlankInputIsSilent(t *testing.T) {
	out, diags := Build(" \n\r\n  ")
	assert.Empty(t, out)
	assert.Empty(t, diags)
}

func TestZeroPremises(t *testing.T) {
	out, diags := Build("---\nT")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "at least one premise")
	assert.Contains(t, out, `\NullaryInfC{$T$}`)
}

func TestOnlyFirstDividerHonored(t *testing.T) {
	m, _ := Parse("A\n———\nB\n-----\nC")
	assert.Equal(t, []string{"A"}, m.Premises)
	assert.Equal(t, "B", m.Conclusion)
}

func TestDividerCharacters(t *testing.T) {
	for _, l := range []string{"---", "———", "─────", " ---- "} {
		assert.True(t, IsDivider(l), l)
	}
	for _, l := range []string{"--", "-=-", "a---"} {
		assert.False(t, IsDivider(l), l)
	}
}

func TestCRLF(t *testing.T) {
	m, diags := Parse("P\r\n---\r\nQ\r\n")
	require.Empty(t, diags)
	assert.Equal(t, "Q", m.Conclusion)
}

func TestDividerSizing(t *testing.T) {
	assert.Equal(t, "---", Divider(""))
	assert.Equal(t, "---", Divider("P"))
	assert.Equal(t, "-----", Divider("P→Q\nP"))
	// existing dividers do not count towards the width
	assert.Equal(t, "----", Divider("AB\n----------"))
}

func TestIsBlock(t *testing.T) {
	assert.True(t, IsBlock("\\begin{prooftree}\n\\AxiomC{A}\n\\UnaryInfC{B}\n\\end{prooftree}"))
	assert.False(t, IsBlock("A\n---\nB"))
}
