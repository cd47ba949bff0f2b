// Package clip is the clipboard collaborator of the editor.
package clip

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard unavailable")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// System writes to the OS clipboard.
type System struct{}

// writeAll is swapped in tests.
var writeAll = clipboard.WriteAll

func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Func adapts a function to Writer.
type Func func(string) error

func (f Func) WriteText(text string) error { return f(text) }
