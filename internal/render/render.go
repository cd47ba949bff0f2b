// Package render is the display side of the editor: it takes plain text or
// LaTeX, refuses structurally broken LaTeX, and produces the preview shown in
// the terminal.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DisplayMode says how the source should be typeset.
type DisplayMode int

const (
	Text   DisplayMode = iota // shown verbatim
	Inline                    // inline formula
	Block                     // display block (matrix, prooftree)
)

func (m DisplayMode) String() string {
	switch m {
	case Text:
		return "text"
	case Inline:
		return "inline"
	case Block:
		return "block"
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

// Sink receives everything the editor wants displayed.
type Sink interface {
	Render(src string, mode DisplayMode) error
}

var (
	ErrUnbalanced  = errors.New("unbalanced braces")
	ErrEnvironment = errors.New("mismatched environment")
	ErrDangling    = errors.New("dangling backslash")
)

// Check reports the first structural problem in src: unbalanced unescaped
// braces, \begin/\end pairs that do not nest, or a trailing lone backslash.
func Check(src string) error {
	rs := []rune(src)
	depth := 0
	var envs []string
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected } at offset %d", ErrUnbalanced, i)
			}
		case '\\':
			if i+1 >= len(rs) {
				return ErrDangling
			}
			if !unicode.IsLetter(rs[i+1]) {
				i++ // control symbol such as \{ or \\
				continue
			}
			j := i + 1
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			word := string(rs[i+1 : j])
			if word == "begin" || word == "end" {
				name, ok := groupArg(rs, j)
				if !ok {
					return fmt.Errorf("%w: \\%s without a name", ErrEnvironment, word)
				}
				if word == "begin" {
					envs = append(envs, name)
				} else {
					if len(envs) == 0 || envs[len(envs)-1] != name {
						return fmt.Errorf("%w: \\end{%s} %s", ErrEnvironment, name, openDesc(envs))
					}
					envs = envs[:len(envs)-1]
				}
			}
			i = j - 1
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed {", ErrUnbalanced, depth)
	}
	if len(envs) > 0 {
		return fmt.Errorf("%w: \\begin{%s} never closed", ErrEnvironment, envs[len(envs)-1])
	}
	return nil
}

func groupArg(rs []rune, at int) (string, bool) {
	for at < len(rs) && rs[at] == ' ' {
		at++
	}
	if at >= len(rs) || rs[at] != '{' {
		return "", false
	}
	end := at + 1
	for end < len(rs) && rs[end] != '}' {
		end++
	}
	if end >= len(rs) {
		return "", false
	}
	return string(rs[at+1 : end]), true
}

func openDesc(envs []string) string {
	if len(envs) == 0 {
		return "with nothing open"
	}
	return "while " + envs[len(envs)-1] + " is open"
}

// Highlight colours LaTeX for a terminal. Unknown style or formatter names
// fall back to chroma's defaults; on any tokenizer error src is returned.
func Highlight(src, style, formatter string) string {
	lexer := lexers.Get("tex")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := styles.Get(style)
	if st == nil {
		st = styles.Fallback
	}
	f := formatters.Get(formatter)
	if f == nil {
		f = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var b strings.Builder
	if err := f.Format(&b, st, it); err != nil {
		return src
	}
	return b.String()
}
