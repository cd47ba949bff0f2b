package editor

import (
	"fmt"
	"strings"
)

// Mode selects how raw text is interpreted.
type Mode string

const (
	Unicode   Mode = "unicode"
	Latex     Mode = "latex"
	Matrix    Mode = "matrix"
	ProofTree Mode = "prooftree"
)

var modes = []Mode{Unicode, Latex, Matrix, ProofTree}

// Modes lists every mode in cycling order.
func Modes() []Mode { return append([]Mode(nil), modes...) }

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want unicode|latex|matrix|prooftree)", s)
}

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode {
	for i, x := range modes {
		if x == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return Unicode
}

func (m Mode) Title() string {
	switch m {
	case Unicode:
		return "Unicode"
	case Latex:
		return "LaTeX"
	case Matrix:
		return "Matrix"
	case ProofTree:
		return "Proof tree"
	}
	return string(m)
}
