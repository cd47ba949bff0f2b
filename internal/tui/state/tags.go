package state

// TagKind enumerates the status chips shown under the field.
type TagKind int

const (
    // Stable ordering for display: Mode, Glyphs, Stray LaTeX, Shape, Premises, Chars, Lines
    MODE TagKind = iota
    GLYPHS
    STRAY_LATEX
    SHAPE
    PREMISES
    CHARS
    LINES
)

// Tag represents a single status chip. Value is used for numeric counters;
// Cols is the second dimension of SHAPE; Text carries the mode name for MODE
// and "!" for an irregular SHAPE.
type Tag struct {
    Kind  TagKind
    Value int
    Cols  int
    Text  string
}
