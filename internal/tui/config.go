package tui

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"

    tea "github.com/charmbracelet/bubbletea"
    "github.com/charmbracelet/lipgloss"

    "mathpad/internal/config"
)

type settingsModel struct {
    path      string
    cfg       *config.Config
    fields    []config.Field
    cursor    int
    inputMode bool
    inputBuf  string
    suggest   []string
    dirty     bool
    saved     bool
    warned    bool // quit was pressed once with unsaved changes
    msg       string
}

// EditSettings opens the settings screen for cfg and writes it to path on
// "s". It reports whether anything was saved.
func EditSettings(path string, cfg *config.Config) (bool, error) {
    m := newSettingsModel(path, cfg)
    p := tea.NewProgram(m, tea.WithAltScreen())
    if _, err := p.Run(); err != nil {
        return false, err
    }
    return m.saved, nil
}

func newSettingsModel(path string, cfg *config.Config) *settingsModel {
    return &settingsModel{path: path, cfg: cfg.Clone(), fields: config.Fields()}
}

func (m *settingsModel) Init() tea.Cmd { return nil }

func (m *settingsModel) current() config.Field { return m.fields[m.cursor] }

func (m *settingsModel) value(key string) string {
    v, err := m.cfg.Get(key)
    if err != nil {
        return "?"
    }
    return v
}

// cycle moves an enumerated setting to its next (or previous) choice.
func (m *settingsModel) cycle(step int) {
    f := m.current()
    if len(f.Choices) == 0 {
        return
    }
    cur := m.value(f.Key)
    idx := -1
    for i, c := range f.Choices {
        if c == cur {
            idx = i
        }
    }
    idx = (idx + step + len(f.Choices)) % len(f.Choices)
    m.apply(f.Key, f.Choices[idx])
}

func (m *settingsModel) apply(key, value string) {
    if err := m.cfg.Set(key, value); err != nil {
        m.msg = "! " + err.Error()
        return
    }
    m.dirty = true
    m.warned = false
    m.msg = ""
}

func (m *settingsModel) save() {
    if err := m.cfg.Validate(); err != nil {
        m.msg = "! " + strings.ReplaceAll(err.Error(), "\n", "; ")
        return
    }
    if err := config.Save(m.path, m.cfg); err != nil {
        m.msg = "! save failed: " + err.Error()
        return
    }
    m.dirty = false
    m.saved = true
    m.msg = "Saved to " + m.path
}

func isPathField(key string) bool { return strings.HasSuffix(key, ".path") }

func (m *settingsModel) computeSuggestions() {
    // Provide simple directory-based suggestions for current input buffer
    in := m.inputBuf
    if strings.TrimSpace(in) == "" { m.suggest = nil; return }
    expanded := expandPath(in)
    dir := expanded
    base := ""
    if fi, err := os.Stat(expanded); err != nil || !fi.IsDir() {
        dir = filepath.Dir(expanded)
        base = filepath.Base(expanded)
    }
    entries, err := os.ReadDir(dir)
    if err != nil { m.suggest = nil; return }
    var out []string
    for _, e := range entries {
        name := e.Name()
        if base == "" || strings.Contains(strings.ToLower(name), strings.ToLower(base)) {
            out = append(out, filepath.Join(dir, name))
        }
        if len(out) >= 8 { break }
    }
    m.suggest = out
}

func expandPath(p string) string {
    p = strings.TrimSpace(p)
    if strings.HasPrefix(p, "~/") {
        if h, err := os.UserHomeDir(); err == nil {
            p = filepath.Join(h, p[2:])
        }
    }
    p = os.ExpandEnv(p)
    if !filepath.IsAbs(p) {
        if abs, err := filepath.Abs(p); err == nil { p = abs }
    }
    return p
}

func (m *settingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
    switch msg := msg.(type) {
    case tea.KeyMsg:
        k := strings.ToLower(msg.String())
        if m.inputMode {
            switch k {
            case "enter":
                m.inputMode = false
                v := m.inputBuf
                if isPathField(m.current().Key) {
                    v = expandPath(v)
                }
                m.apply(m.current().Key, v)
                m.suggest = nil
                return m, nil
            case "tab":
                if len(m.suggest) > 0 {
                    m.inputBuf = m.suggest[0]
                    m.computeSuggestions()
                }
                return m, nil
            case "esc":
                m.inputMode = false
                m.inputBuf = ""
                m.suggest = nil
                return m, nil
            default:
                if msg.Type == tea.KeyBackspace || msg.Type == tea.KeyCtrlH {
                    if n := len([]rune(m.inputBuf)); n > 0 {
                        r := []rune(m.inputBuf)
                        m.inputBuf = string(r[:n-1])
                    }
                } else if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
                    m.inputBuf += string(msg.Runes)
                }
                if isPathField(m.current().Key) {
                    m.computeSuggestions()
                }
                return m, nil
            }
        }
        switch k {
        case "q", "ctrl+c", "esc":
            if m.dirty && !m.warned && k != "ctrl+c" {
                m.warned = true
                m.msg = "Unsaved changes: s to save, q again to discard"
                return m, nil
            }
            return m, tea.Quit
        case "up", "k":
            if m.cursor > 0 { m.cursor-- }
        case "down", "j":
            if m.cursor < len(m.fields)-1 { m.cursor++ }
        case "left", "h":
            m.cycle(-1)
        case "right", "l", " ":
            m.cycle(1)
        case "enter", "e":
            if len(m.current().Choices) > 0 {
                m.cycle(1)
                return m, nil
            }
            m.inputMode = true
            m.inputBuf = m.value(m.current().Key)
        case "r":
            def, _ := config.Default().Get(m.current().Key)
            m.apply(m.current().Key, def)
        case "s":
            m.save()
        }
    }
    return m, nil
}

func (m *settingsModel) View() string {
    var b strings.Builder
    b.WriteString(titleStyle.Render("Settings") + "  " + faintStyle.Render(m.path) + "\n\n")
    if m.msg != "" {
        st := faintStyle
        if strings.HasPrefix(m.msg, "!") {
            st = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
        }
        b.WriteString(st.Render(m.msg) + "\n\n")
    }
    width := 0
    for _, f := range m.fields {
        if len(f.Key) > width { width = len(f.Key) }
    }
    for i, f := range m.fields {
        val := m.value(f.Key)
        if len(f.Choices) > 0 {
            val = "‹ " + val + " ›"
        }
        line := fmt.Sprintf("%-*s  %s", width, f.Key, val)
        if i == m.cursor {
            line = selStyle.Render("> " + line)
        } else {
            line = "  " + line
        }
        b.WriteString(line + "\n")
    }
    if m.inputMode {
        b.WriteString("\n" + m.current().Key + ": " + m.inputBuf + "\n")
        for _, s := range m.suggest { b.WriteString(faintStyle.Render("  • ") + s + "\n") }
        b.WriteString("enter: set   tab: autocomplete   esc: cancel\n")
    } else {
        dirty := ""
        if m.dirty { dirty = "  (modified)" }
        b.WriteString("\nKeys: enter edit  ←/→ cycle  r default  s save  q quit" + dirty + "\n")
    }
    return b.String()
}
