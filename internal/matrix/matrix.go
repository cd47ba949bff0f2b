// Package matrix parses the row/column mini-language used in matrix mode and
// builds the corresponding LaTeX matrix environment.
//
// Rows are separated by a bar or a newline, cells by runs of whitespace:
//
//	1 2 3 | 4 5 6
//
// An irregular matrix is still returned so callers can report which row is
// off, but it never produces LaTeX.
package matrix

import (
	"errors"
	"fmt"
	"strings"

	"mathpad/internal/diag"
	"mathpad/internal/tokens"
)

// DefaultStyle is the environment used when the caller names none.
const DefaultStyle = "bmatrix"

// FormatHint is shown when input is non-empty but holds no rows.
const FormatHint = "format: 1 2 3 | 4 5 6  (rows split by | or newline, cells by spaces)"

var (
	ErrIrregular = errors.New("matrix rows differ in length")
	ErrStyle     = errors.New("unknown matrix style")
)

var styles = map[string]bool{
	"matrix":  true,
	"pmatrix": true,
	"bmatrix": true,
	"Bmatrix": true,
	"vmatrix": true,
	"Vmatrix": true,
}

// Styles lists the accepted environment names in display order.
func Styles() []string {
	return []string{"bmatrix", "pmatrix", "Bmatrix", "vmatrix", "Vmatrix", "matrix"}
}

// ValidStyle reports whether style names a supported environment.
func ValidStyle(style string) bool { return styles[style] }

// Model is a parsed matrix. Rows keep their raw cell text.
type Model struct {
	Rows [][]string

	cols      int
	badRow    int // 1-based index of the first irregular row, 0 when rectangular
	badRowLen int
}

// Parse reads raw matrix text. It returns nil when no non-empty row exists.
func Parse(raw string) *Model {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == '\n' || r == '\r'
	})
	m := &Model{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.Rows = append(m.Rows, strings.Fields(p))
	}
	if len(m.Rows) == 0 {
		return nil
	}
	m.cols = len(m.Rows[0])
	for i, row := range m.Rows {
		if len(row) != m.cols {
			m.badRow = i + 1
			m.badRowLen = len(row)
			break
		}
	}
	return m
}

func (m *Model) RowCount() int { return len(m.Rows) }

// ColCount is the cell count of the first row.
func (m *Model) ColCount() int { return m.cols }

// Rectangular reports whether every row has ColCount cells.
func (m *Model) Rectangular() bool { return m.badRow == 0 }

// Valid is Rectangular under the name used by callers deciding whether to build.
func (m *Model) Valid() bool { return m.Rectangular() }

// Diagnostic describes the first irregular row, if any.
func (m *Model) Diagnostic() (diag.Diagnostic, bool) {
	if m.Rectangular() {
		return diag.Diagnostic{}, false
	}
	return diag.Warnf("matrix.irregular", "row %d: expected %d cells, got %d", m.badRow, m.cols, m.badRowLen), true
}

// LaTeX renders the matrix inside the named environment. Cells are transcoded
// from glyphs to LaTeX. Invalid matrices and unknown styles return an error and
// no output.
func (m *Model) LaTeX(style string) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	if !styles[style] {
		return "", fmt.Errorf("%w: %q", ErrStyle, style)
	}
	if !m.Rectangular() {
		return "", fmt.Errorf("%w: row %d has %d cells, expected %d", ErrIrregular, m.badRow, m.badRowLen, m.cols)
	}
	lines := make([]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, strings.TrimSpace(tokens.ToLatex(c)))
		}
		lines = append(lines, "  "+strings.Join(cells, " & "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{%s}\n", style)
	b.WriteString(strings.Join(lines, " \\\\\n"))
	fmt.Fprintf(&b, "\n\\end{%s}", style)
	return b.String(), nil
}

// Build parses raw and renders it in one step. The returned LaTeX is empty
// when raw is blank or irregular; diagnostics explain why.
func Build(raw, style string) (string, []diag.Diagnostic) {
	m := Parse(raw)
	if m == nil {
		if strings.TrimSpace(raw) == "" {
			return "", nil
		}
		return "", []diag.Diagnostic{diag.Warnf("matrix.format", "%s", FormatHint)}
	}
	if d, bad := m.Diagnostic(); bad {
		return "", []diag.Diagnostic{d}
	}
	out, err := m.LaTeX(style)
	if err != nil {
		return "", []diag.Diagnostic{diag.Errorf("matrix.style", "%v", err)}
	}
	return out, nil
}
