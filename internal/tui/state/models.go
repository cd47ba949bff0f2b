package state

// Focus says which pane receives keys.
type Focus int

const (
    FIELD Focus = iota
    KEYPAD
)

// Overlay is a full-screen panel drawn over the editor.
type Overlay int

const (
    NoOverlay Overlay = iota
    HelpOverlay
    HistoryOverlay
    DiffOverlay
)

// DiffMode controls how a rewrite diff is rendered.
type DiffMode int

const (
    Unified DiffMode = iota
    SideBySide
)

// UIState holds cross-widget UI state used by status bar, keypad, field and overlays.
type UIState struct {
    Focus   Focus
    Overlay Overlay
    View    DiffMode

    // Keypad selection; Row indexes the visible groups
    Row       int
    Col       int
    OtherOpen bool

    // Layout
    Width  int
    Height int
    MinCol int

    // Field breathing effect after a proof-tree newline
    Pulse bool

    // Notices and ephemeral messages
    Notice string
}
