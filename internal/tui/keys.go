package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"mathpad/internal/tui/widgets/helpoverlay"
)

// keyMap holds every binding the editor screen reacts to.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Focus       key.Binding
	Mode        key.Binding
	CopySymbols key.Binding
	CopyLatex   key.Binding
	Clear       key.Binding
	History     key.Binding
	Diff        key.Binding
	Close       key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Tap   key.Binding
	Hold  key.Binding
	Other key.Binding

	Home    key.Binding
	End     key.Binding
	Delete  key.Binding
	Newline key.Binding

	Search key.Binding
	Next   key.Binding
	Prev   key.Binding
	Replay key.Binding
	Yank   key.Binding
	Export key.Binding
	View   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:        key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1/?", "toggle help")),
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "field ↔ keypad")),
		Mode:        key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "next mode")),
		CopySymbols: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy symbols")),
		CopyLatex:   key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "copy LaTeX")),
		Clear:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear")),
		History:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "history")),
		Diff:        key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "last cleanup")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close panel")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Tap:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "press key")),
		Hold:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "long-press (uppercase)")),
		Other: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "more symbols")),

		Home:    key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
		End:     key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
		Delete:  key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("⌫/del", "delete")),
		Newline: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new line (matrix, proof tree)")),

		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "next/prev match")),
		Prev:   key.NewBinding(key.WithKeys("N")),
		Replay: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load entry")),
		Yank:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy entry")),
		Export: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "export")),
		View:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "unified/side-by-side")),
	}
}

func (k keyMap) sections() []helpoverlay.Section {
	return []helpoverlay.Section{
		{Title: "Global", Keys: []key.Binding{k.Focus, k.Mode, k.Help, k.Close, k.Quit}},
		{Title: "Editing", Keys: []key.Binding{k.CopySymbols, k.CopyLatex, k.Clear, k.History, k.Diff}},
		{Title: "Field", Keys: []key.Binding{k.Home, k.End, k.Delete, k.Newline}},
		{Title: "Keypad", Keys: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Tap, k.Hold, k.Other}},
		{Title: "History", Keys: []key.Binding{k.Replay, k.Search, k.Next, k.Yank, k.Export}},
		{Title: "Cleanup diff", Keys: []key.Binding{k.View}},
	}
}
