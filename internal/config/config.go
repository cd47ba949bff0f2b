package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    "github.com/BurntSushi/toml"

    "mathpad/internal/editor"
    "mathpad/internal/history"
    "mathpad/internal/kvstore"
    "mathpad/internal/matrix"
)

// Config is the on-disk settings file. It is read from TOML or JSON,
// chosen by file extension.
type Config struct {
    Editor  Editor  `toml:"editor" json:"editor"`
    History History `toml:"history" json:"history"`
    Render  Render  `toml:"render" json:"render"`
    Log     Log     `toml:"log" json:"log"`
}

type Editor struct {
    DefaultMode string `toml:"default_mode" json:"default_mode"`
    DebounceMS  int    `toml:"debounce_ms" json:"debounce_ms"`
    SweepMS     int    `toml:"sweep_ms" json:"sweep_ms"`
    HoldMS      int    `toml:"hold_ms" json:"hold_ms"`
    ToastMS     int    `toml:"toast_ms" json:"toast_ms"`
    MatrixStyle string `toml:"matrix_style" json:"matrix_style"`
}

type History struct {
    Backend string `toml:"backend" json:"backend"` // file | sqlite | memory
    Path    string `toml:"path" json:"path"`
    Key     string `toml:"key" json:"key"`
    Max     int    `toml:"max" json:"max"`
    Watch   bool   `toml:"watch" json:"watch"` // reload when another instance writes (file backend)
}

type Render struct {
    Style     string `toml:"style" json:"style"`
    Formatter string `toml:"formatter" json:"formatter"`
    NoColor   bool   `toml:"no_color" json:"no_color"`
}

type Log struct {
    Path    string `toml:"path" json:"path"`
    Level   string `toml:"level" json:"level"` // debug | info | warn | error
    Journal bool   `toml:"journal" json:"journal"`
}

// Default returns the built-in settings.
func Default() *Config {
    data := DataDir()
    return &Config{
        Editor: Editor{
            DefaultMode: string(editor.Unicode),
            DebounceMS:  1500,
            SweepMS:     500,
            HoldMS:      500,
            ToastMS:     2500,
            MatrixStyle: matrix.DefaultStyle,
        },
        History: History{
            Backend: kvstore.BackendFile,
            Path:    filepath.Join(data, "history.json"),
            Key:     history.DefaultKey,
            Max:     history.DefaultMax,
            Watch:   true,
        },
        Render: Render{
            Style:     "monokai",
            Formatter: "terminal256",
        },
        Log: Log{
            Path:  filepath.Join(data, "mathpad.log"),
            Level: "info",
        },
    }
}

// Dir is where config files live.
func Dir() (string, error) {
    base, err := os.UserConfigDir()
    if err != nil {
        return "", fmt.Errorf("locate config dir: %w", err)
    }
    return filepath.Join(base, "mathpad"), nil
}

// DefaultPath returns the existing config file, preferring TOML, or the TOML
// path when neither exists.
func DefaultPath() (string, error) {
    dir, err := Dir()
    if err != nil {
        return "", err
    }
    tp := filepath.Join(dir, "config.toml")
    if _, err := os.Stat(tp); err == nil {
        return tp, nil
    }
    jp := filepath.Join(dir, "config.json")
    if _, err := os.Stat(jp); err == nil {
        return jp, nil
    }
    return tp, nil
}

// Load reads path over the defaults, applies environment overrides and
// validates. An empty path means DefaultPath; a missing file is not an error.
func Load(path string) (*Config, error) {
    c := Default()
    if path == "" {
        p, err := DefaultPath()
        if err != nil {
            return nil, err
        }
        path = p
    }
    if _, err := os.Stat(path); err == nil {
        if err := decode(path, c); err != nil {
            return nil, err
        }
    } else if !errors.Is(err, os.ErrNotExist) {
        return nil, fmt.Errorf("read config: %w", err)
    }
    c.ApplyEnv(os.Getenv)
    c.fill()
    if err := c.Validate(); err != nil {
        return nil, fmt.Errorf("invalid config %s: %w", path, err)
    }
    return c, nil
}

func decode(path string, c *Config) error {
    if isJSON(path) {
        data, err := os.ReadFile(path)
        if err != nil {
            return fmt.Errorf("read config: %w", err)
        }
        if err := json.Unmarshal(data, c); err != nil {
            return fmt.Errorf("parse config JSON: %w", err)
        }
        return nil
    }
    md, err := toml.DecodeFile(path, c)
    if err != nil {
        return fmt.Errorf("parse config TOML: %w", err)
    }
    if undec := md.Undecoded(); len(undec) > 0 {
        keys := make([]string, 0, len(undec))
        for _, k := range undec {
            keys = append(keys, k.String())
        }
        return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
    }
    return nil
}

func isJSON(path string) bool {
    return strings.EqualFold(filepath.Ext(path), ".json")
}

// ApplyEnv overrides settings from MATHPAD_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
    if v := getenv("MATHPAD_HISTORY_BACKEND"); v != "" {
        c.History.Backend = v
    }
    if v := getenv("MATHPAD_HISTORY_PATH"); v != "" {
        c.History.Path = v
    }
    if v := getenv("MATHPAD_LOG_LEVEL"); v != "" {
        c.Log.Level = v
    }
    if v := getenv("MATHPAD_MODE"); v != "" {
        c.Editor.DefaultMode = v
    }
}

// fill replaces zero values a partial file left behind.
func (c *Config) fill() {
    d := Default()
    if c.Editor.DefaultMode == "" {
        c.Editor.DefaultMode = d.Editor.DefaultMode
    }
    if c.Editor.MatrixStyle == "" {
        c.Editor.MatrixStyle = d.Editor.MatrixStyle
    }
    if c.History.Backend == "" {
        c.History.Backend = d.History.Backend
    }
    if c.History.Key == "" {
        c.History.Key = d.History.Key
    }
    if c.History.Path == "" && c.History.Backend != kvstore.BackendMemory {
        c.History.Path = d.History.Path
    }
    // the default file path is JSON; sqlite gets its own file
    if c.History.Backend == kvstore.BackendSQLite && c.History.Path == d.History.Path {
        c.History.Path = filepath.Join(DataDir(), "history.db")
    }
    if c.Render.Style == "" {
        c.Render.Style = d.Render.Style
    }
    if c.Render.Formatter == "" {
        c.Render.Formatter = d.Render.Formatter
    }
    if c.Log.Level == "" {
        c.Log.Level = d.Log.Level
    }
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
    var errs []error
    bad := func(field, format string, args ...any) {
        errs = append(errs, fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...)))
    }
    if _, err := editor.ParseMode(c.Editor.DefaultMode); err != nil {
        bad("editor.default_mode", "%v", err)
    }
    for field, n := range map[string]int{
        "editor.debounce_ms": c.Editor.DebounceMS,
        "editor.sweep_ms":    c.Editor.SweepMS,
        "editor.hold_ms":     c.Editor.HoldMS,
        "editor.toast_ms":    c.Editor.ToastMS,
    } {
        if n <= 0 {
            bad(field, "must be positive, got %d", n)
        }
    }
    if !matrix.ValidStyle(c.Editor.MatrixStyle) {
        bad("editor.matrix_style", "unknown style %q (want one of %s)", c.Editor.MatrixStyle, strings.Join(matrix.Styles(), ", "))
    }
    switch c.History.Backend {
    case kvstore.BackendFile, kvstore.BackendSQLite:
        if c.History.Path == "" {
            bad("history.path", "required for the %s backend", c.History.Backend)
        }
    case kvstore.BackendMemory:
    default:
        bad("history.backend", "unknown backend %q (want %s)", c.History.Backend, strings.Join(kvstore.Backends(), "|"))
    }
    if c.History.Max <= 0 {
        bad("history.max", "must be positive, got %d", c.History.Max)
    }
    switch strings.ToLower(c.Log.Level) {
    case "debug", "info", "warn", "error":
    default:
        bad("log.level", "unknown level %q", c.Log.Level)
    }
    return errors.Join(errs...)
}

// Save writes c to path as TOML or JSON, by extension.
func Save(path string, c *Config) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return fmt.Errorf("create config dir: %w", err)
    }
    f, err := os.Create(path)
    if err != nil {
        return fmt.Errorf("write config: %w", err)
    }
    if err := Write(f, c, isJSON(path)); err != nil {
        f.Close()
        return err
    }
    return f.Close()
}

// Write encodes c as indented JSON or as commented TOML.
func Write(w io.Writer, c *Config, asJSON bool) error {
    if asJSON {
        data, err := json.MarshalIndent(c, "", "  ")
        if err != nil {
            return err
        }
        _, err = w.Write(append(data, '\n'))
        return err
    }
    fmt.Fprintln(w, "# mathpad configuration")
    fmt.Fprintln(w)
    if err := toml.NewEncoder(w).Encode(c); err != nil {
        return fmt.Errorf("encode config: %w", err)
    }
    return nil
}

// EditorOptions converts the editor section for editor.New.
func (c *Config) EditorOptions() editor.Options {
    mode, _ := editor.ParseMode(c.Editor.DefaultMode)
    return editor.Options{
        Mode:        mode,
        Debounce:    ms(c.Editor.DebounceMS),
        Sweep:       ms(c.Editor.SweepMS),
        Hold:        ms(c.Editor.HoldMS),
        MatrixStyle: c.Editor.MatrixStyle,
    }
}

// ToastDuration is how long notices stay on screen.
func (c *Config) ToastDuration() time.Duration { return ms(c.Editor.ToastMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

/* ---------- key access for the settings screen and `config show` ---------- */

// Field describes one editable setting.
type Field struct {
    Key     string
    Choices []string // non-empty for enumerated settings
}

// Fields lists the editable settings in display order.
func Fields() []Field {
    modes := make([]string, 0, 4)
    for _, m := range editor.Modes() {
        modes = append(modes, string(m))
    }
    return []Field{
        {Key: "editor.default_mode", Choices: modes},
        {Key: "editor.debounce_ms"},
        {Key: "editor.sweep_ms"},
        {Key: "editor.hold_ms"},
        {Key: "editor.toast_ms"},
        {Key: "editor.matrix_style", Choices: matrix.Styles()},
        {Key: "history.backend", Choices: kvstore.Backends()},
        {Key: "history.path"},
        {Key: "history.key"},
        {Key: "history.max"},
        {Key: "history.watch", Choices: []string{"true", "false"}},
        {Key: "render.style"},
        {Key: "render.formatter", Choices: []string{"terminal256", "terminal16m", "terminal16", "terminal8", "noop"}},
        {Key: "render.no_color", Choices: []string{"false", "true"}},
        {Key: "log.path"},
        {Key: "log.level", Choices: []string{"debug", "info", "warn", "error"}},
        {Key: "log.journal", Choices: []string{"false", "true"}},
    }
}

// Get returns a setting as text.
func (c *Config) Get(key string) (string, error) {
    switch key {
    case "editor.default_mode":
        return c.Editor.DefaultMode, nil
    case "editor.debounce_ms":
        return strconv.Itoa(c.Editor.DebounceMS), nil
    case "editor.sweep_ms":
        return strconv.Itoa(c.Editor.SweepMS), nil
    case "editor.hold_ms":
        return strconv.Itoa(c.Editor.HoldMS), nil
    case "editor.toast_ms":
        return strconv.Itoa(c.Editor.ToastMS), nil
    case "editor.matrix_style":
        return c.Editor.MatrixStyle, nil
    case "history.backend":
        return c.History.Backend, nil
    case "history.path":
        return c.History.Path, nil
    case "history.key":
        return c.History.Key, nil
    case "history.max":
        return strconv.Itoa(c.History.Max), nil
    case "history.watch":
        return strconv.FormatBool(c.History.Watch), nil
    case "render.style":
        return c.Render.Style, nil
    case "render.formatter":
        return c.Render.Formatter, nil
    case "render.no_color":
        return strconv.FormatBool(c.Render.NoColor), nil
    case "log.path":
        return c.Log.Path, nil
    case "log.level":
        return c.Log.Level, nil
    case "log.journal":
        return strconv.FormatBool(c.Log.Journal), nil
    }
    return "", fmt.Errorf("unknown setting %q", key)
}

// Set parses value into the named setting. It does not validate ranges; call
// Validate afterwards.
func (c *Config) Set(key, value string) error {
    value = strings.TrimSpace(value)
    setInt := func(dst *int) error {
        n, err := strconv.Atoi(value)
        if err != nil {
            return fmt.Errorf("%s: not a number: %q", key, value)
        }
        *dst = n
        return nil
    }
    setBool := func(dst *bool) error {
        b, err := strconv.ParseBool(value)
        if err != nil {
            return fmt.Errorf("%s: not a boolean: %q", key, value)
        }
        *dst = b
        return nil
    }
    switch key {
    case "editor.default_mode":
        c.Editor.DefaultMode = value
    case "editor.debounce_ms":
        return setInt(&c.Editor.DebounceMS)
    case "editor.sweep_ms":
        return setInt(&c.Editor.SweepMS)
    case "editor.hold_ms":
        return setInt(&c.Editor.HoldMS)
    case "editor.toast_ms":
        return setInt(&c.Editor.ToastMS)
    case "editor.matrix_style":
        c.Editor.MatrixStyle = value
    case "history.backend":
        c.History.Backend = value
    case "history.path":
        c.History.Path = value
    case "history.key":
        c.History.Key = value
    case "history.max":
        return setInt(&c.History.Max)
    case "history.watch":
        return setBool(&c.History.Watch)
    case "render.style":
        c.Render.Style = value
    case "render.formatter":
        c.Render.Formatter = value
    case "render.no_color":
        return setBool(&c.Render.NoColor)
    case "log.path":
        c.Log.Path = value
    case "log.level":
        c.Log.Level = value
    case "log.journal":
        return setBool(&c.Log.Journal)
    default:
        return fmt.Errorf("unknown setting %q", key)
    }
    return nil
}

// Clone returns a deep copy; every field is a value.
func (c *Config) Clone() *Config {
    cp := *c
    return &cp
}
