package render

import "sync"

// Options configures a Terminal.
type Options struct {
	Style     string // chroma style, e.g. "monokai"
	Formatter string // chroma formatter, e.g. "terminal256"
	NoColor   bool
}

// Terminal renders into a string the TUI shows as its preview pane. A failed
// render leaves the previous preview in place.
type Terminal struct {
	opts Options

	mu   sync.Mutex
	src  string
	mode DisplayMode
	view string
}

func NewTerminal(opts Options) *Terminal {
	if opts.Style == "" {
		opts.Style = "monokai"
	}
	if opts.Formatter == "" {
		opts.Formatter = "terminal256"
	}
	return &Terminal{opts: opts}
}

func (t *Terminal) Render(src string, mode DisplayMode) error {
	if mode != Text {
		if err := Check(src); err != nil {
			return err
		}
	}
	view := src
	if mode != Text && !t.opts.NoColor && src != "" {
		view = Highlight(src, t.opts.Style, t.opts.Formatter)
	}
	t.mu.Lock()
	t.src, t.mode, t.view = src, mode, view
	t.mu.Unlock()
	return nil
}

// View is the last successfully rendered preview.
func (t *Terminal) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Source returns the source and mode of the last successful render.
func (t *Terminal) Source() (string, DisplayMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src, t.mode
}
