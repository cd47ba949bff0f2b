// Copyright
// SPDX-License-Identifier: MIT
// mathpad: symbol keyboard for logic and set notation, with LaTeX conversion and matrix / proof-tree builders
package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "io"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "text/tabwriter"
    "time"

    "github.com/charmbracelet/glamour"
    "github.com/peterh/liner"
    "golang.org/x/term"

    "mathpad/internal/clip"
    "mathpad/internal/config"
    "mathpad/internal/diag"
    "mathpad/internal/editor"
    "mathpad/internal/history"
    "mathpad/internal/kvstore"
    "mathpad/internal/logs"
    "mathpad/internal/matrix"
    "mathpad/internal/prooftree"
    "mathpad/internal/render"
    "mathpad/internal/tokens"
    "mathpad/internal/tui"
    "mathpad/internal/tui/util"
    "mathpad/internal/tui/views/entries"
)

const Version = "0.1.0"

// errInvalid marks input that was read fine but could not be built; the
// diagnostics were already printed.
var errInvalid = errors.New("invalid input")

/* ---------- CLI ---------- */

func main() {
    args := os.Args[1:]
    cmd := "edit"
    if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
        cmd, args = args[0], args[1:]
    }
    var err error
    switch cmd {
    case "help", "-h", "--help":
        if len(args) > 0 {
            helpTopic(os.Stdout, args[0])
        } else {
            usage(os.Stdout)
        }
    case "version":
        fmt.Println("mathpad", Version)
    case "edit":
        err = cmdEdit(args)
    case "convert":
        err = cmdConvert(args, os.Stdin, os.Stdout)
    case "matrix":
        err = cmdMatrix(args, os.Stdin, os.Stdout, os.Stderr)
    case "prooftree":
        err = cmdProofTree(args, os.Stdin, os.Stdout, os.Stderr)
    case "history":
        err = cmdHistory(args, os.Stdout)
    case "repl":
        err = cmdRepl(args)
    case "keys":
        err = cmdKeys(os.Stdout)
    case "config":
        err = cmdConfig(args, os.Stdout)
    default:
        usage(os.Stderr)
        os.Exit(2)
    }
    if err != nil {
        if !errors.Is(err, errInvalid) {
            fmt.Fprintln(os.Stderr, "mathpad:", err)
        }
        os.Exit(1)
    }
}

func usage(w io.Writer) {
    fmt.Fprintln(w, `mathpad `+Version+`
Symbol keyboard for logic and set notation. Type glyphs, copy them as Unicode or LaTeX,
and build matrices and bussproofs proof trees from plain text.
USAGE
  mathpad [command] [options]
COMMANDS
  edit         Interactive keyboard (default)
  convert      Convert text between glyphs and LaTeX
  matrix       Build a matrix environment from "1 2 | 3 4"
  prooftree    Build a prooftree block from premises, a --- line and a conclusion
  history      List, clear or export the saved history
  repl         Line-oriented editor for terminals without a full-screen UI
  keys         Print the keypad and the symbol table
  config       init | show | edit the settings file
  help         Show help (try: mathpad help edit)
  version      Print version
NOTES
  • Settings live in `+configHint()+` (TOML or JSON).
  • NO_COLOR disables colors everywhere.`)
}

func helpTopic(w io.Writer, name string) {
    switch name {
    case "edit":
        fmt.Fprintln(w, `USAGE
  mathpad edit [--mode unicode|latex|matrix|prooftree] [--config PATH] [--no-color]
DESCRIPTION
  Opens the keyboard. Tab switches between the text field and the keypad, ctrl+t cycles
  the input mode and F1 lists every key. Edits are saved to history once typing pauses.`)
    case "convert":
        fmt.Fprintln(w, `USAGE
  mathpad convert --to latex|unicode [TEXT ...]
DESCRIPTION
  Converts glyphs to canonical LaTeX commands or LaTeX commands to glyphs.
  Reads standard input when no TEXT is given.`)
    case "matrix":
        fmt.Fprintln(w, `USAGE
  mathpad matrix [--style bmatrix|pmatrix|vmatrix|Vmatrix|Bmatrix|matrix] [TEXT ...]
DESCRIPTION
  Rows are separated by | or newlines, cells by spaces. Exits 1 when rows differ in length.`)
    case "prooftree":
        fmt.Fprintln(w, `USAGE
  mathpad prooftree [TEXT ...]
DESCRIPTION
  One premise per line, then a line of three or more dashes, then the conclusion.
  Reads standard input when no TEXT is given.`)
    case "history":
        fmt.Fprintln(w, `USAGE
  mathpad history list [--json | --pretty]
  mathpad history clear
  mathpad history export [--out FILE]`)
    case "repl":
        fmt.Fprintln(w, `USAGE
  mathpad repl [--mode M] [--config PATH]
DESCRIPTION
  Each line edits the buffer and is committed to history at once. In matrix and proof-tree
  mode lines are appended; in the other modes a line replaces the buffer.
  Commands: :mode M  :latex  :copy  :copylatex  :clear  :history  :help  :quit`)
    case "config":
        fmt.Fprintln(w, `USAGE
  mathpad config init [--json] [--force]
  mathpad config show
  mathpad config edit
All config commands accept --config PATH.`)
    default:
        usage(w)
    }
}

func configHint() string {
    if p, err := config.DefaultPath(); err == nil {
        return p
    }
    return "the user config directory"
}

// textArg joins args, or reads all of stdin when there are none.
func textArg(args []string, stdin io.Reader) (string, error) {
    if len(args) > 0 {
        return strings.Join(args, " "), nil
    }
    data, err := io.ReadAll(stdin)
    if err != nil {
        return "", fmt.Errorf("read stdin: %w", err)
    }
    return strings.TrimRight(string(data), "\r\n"), nil
}

func printDiags(w io.Writer, diags []diag.Diagnostic) {
    for _, d := range diags {
        fmt.Fprintln(w, d.String())
    }
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

func termWidth() int {
    if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
        return w
    }
    return 80
}

/* ---------- shared setup ---------- */

type env struct {
    cfgPath string
    cfg     *config.Config
    log     *logs.Logger
    store   *history.Store
    watch   <-chan struct{}
    close   func()
}

func resolveConfigPath(p string) (string, error) {
    if p != "" {
        return p, nil
    }
    return config.DefaultPath()
}

// setup loads config, opens the log and the history store. Failures of the
// log or the store degrade; only a broken config is fatal.
func setup(cfgPath string, watch bool) (*env, error) {
    path, err := resolveConfigPath(cfgPath)
    if err != nil {
        return nil, err
    }
    c, err := config.Load(path)
    if err != nil {
        return nil, err
    }
    l, err := logs.New(logs.Options{Path: c.Log.Path, Level: c.Log.Level, Journal: c.Log.Journal})
    if err != nil {
        fmt.Fprintln(os.Stderr, "mathpad: logging disabled:", err)
        l = &logs.Logger{Logger: logs.Discard()}
    }
    e := &env{cfgPath: path, cfg: c, log: l}
    e.store, e.watch, e.close = openHistory(c, l.Logger, watch)
    return e, nil
}

func (e *env) Close() {
    e.close()
    _ = e.log.Close()
}

func openHistory(c *config.Config, log *slog.Logger, watch bool) (*history.Store, <-chan struct{}, func()) {
    var kv kvstore.Store
    kv, err := kvstore.Open(c.History.Backend, c.History.Path)
    if err != nil {
        log.Warn("history store unavailable, continuing in memory", "backend", c.History.Backend, "path", c.History.Path, "err", err)
        kv = nil
    }
    store := history.New(kv, history.Options{Key: c.History.Key, Max: c.History.Max, Logger: log})
    ctx, cancel := context.WithCancel(context.Background())
    var ch <-chan struct{}
    if f, ok := kv.(*kvstore.File); ok && watch && c.History.Watch {
        if ch, err = f.Watch(ctx); err != nil {
            log.Warn("history watch disabled", "err", err)
            ch = nil
        }
    }
    return store, ch, func() {
        cancel()
        if kv != nil {
            _ = kv.Close()
        }
    }
}

/* ---------- commands ---------- */

func cmdEdit(args []string) error {
    fs := flag.NewFlagSet("edit", flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "edit") }
    mode := fs.String("mode", "", "Input mode: unicode|latex|matrix|prooftree")
    cfgPath := fs.String("config", "", "Settings file (TOML or JSON)")
    noColor := fs.Bool("no-color", false, "Disable colors")
    if err := fs.Parse(args); err != nil {
        return err
    }
    if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
        return errors.New("edit needs an interactive terminal; try `mathpad repl` or `mathpad convert`")
    }
    e, err := setup(*cfgPath, true)
    if err != nil {
        return err
    }
    defer e.Close()
    if *mode != "" {
        m, err := editor.ParseMode(*mode)
        if err != nil {
            return err
        }
        e.cfg.Editor.DefaultMode = string(m)
    }
    e.log.Info("editor started", "mode", e.cfg.Editor.DefaultMode, "backend", e.cfg.History.Backend, "version", Version)
    err = tui.Run(tui.Params{
        Config:    e.cfg,
        History:   e.store,
        Watch:     e.watch,
        Clipboard: clip.System{},
        Logger:    e.log.Logger,
        ExportDir: filepath.Join(config.DataDir(), "exports"),
        NoColor:   *noColor,
    })
    e.log.Info("editor stopped", "entries", e.store.Len())
    return err
}

func cmdConvert(args []string, stdin io.Reader, out io.Writer) error {
    fs := flag.NewFlagSet("convert", flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "convert") }
    to := fs.String("to", "", "Target: latex|unicode")
    if err := fs.Parse(args); err != nil {
        return err
    }
    text, err := textArg(fs.Args(), stdin)
    if err != nil {
        return err
    }
    switch strings.ToLower(*to) {
    case "latex":
        fmt.Fprintln(out, strings.TrimRight(tokens.ToLatex(tokens.Normalize(text)), " "))
    case "unicode":
        fmt.Fprintln(out, tokens.ToUnicode(tokens.Normalize(text)))
    default:
        return fmt.Errorf("--to must be latex or unicode, got %q", *to)
    }
    return nil
}

func cmdMatrix(args []string, stdin io.Reader, out, errw io.Writer) error {
    fs := flag.NewFlagSet("matrix", flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "matrix") }
    style := fs.String("style", matrix.DefaultStyle, "Environment: "+strings.Join(matrix.Styles(), "|"))
    if err := fs.Parse(args); err != nil {
        return err
    }
    if !matrix.ValidStyle(*style) {
        return fmt.Errorf("%w: %q", matrix.ErrStyle, *style)
    }
    text, err := textArg(fs.Args(), stdin)
    if err != nil {
        return err
    }
    block, diags := matrix.Build(text, *style)
    printDiags(errw, diags)
    if block == "" {
        if len(diags) == 0 {
            fmt.Fprintln(errw, matrix.FormatHint)
        }
        return errInvalid
    }
    fmt.Fprintln(out, block)
    return nil
}

func cmdProofTree(args []string, stdin io.Reader, out, errw io.Writer) error {
    fs := flag.NewFlagSet("prooftree", flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "prooftree") }
    if err := fs.Parse(args); err != nil {
        return err
    }
    text, err := textArg(fs.Args(), stdin)
    if err != nil {
        return err
    }
    block, diags := prooftree.Build(text)
    printDiags(errw, diags)
    if block == "" {
        fmt.Fprintln(errw, "nothing to build: give premises, a --- line and a conclusion")
        return errInvalid
    }
    fmt.Fprintln(out, block)
    return nil
}

func cmdHistory(args []string, out io.Writer) error {
    sub := "list"
    if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
        sub, args = args[0], args[1:]
    }
    fs := flag.NewFlagSet("history "+sub, flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "history") }
    cfgPath := fs.String("config", "", "Settings file (TOML or JSON)")
    asJSON := fs.Bool("json", false, "Print the stored JSON")
    pretty := fs.Bool("pretty", false, "Render as markdown")
    outPath := fs.String("out", "", "Export file (default: stdout)")
    if err := fs.Parse(args); err != nil {
        return err
    }
    e, err := setup(*cfgPath, false)
    if err != nil {
        return err
    }
    defer e.Close()
    return runHistory(sub, e.store, historyFlags{json: *asJSON, pretty: *pretty, out: *outPath}, out)
}

type historyFlags struct {
    json   bool
    pretty bool
    out    string
}

func runHistory(sub string, store *history.Store, fl historyFlags, out io.Writer) error {
    switch sub {
    case "list":
        switch {
        case fl.json:
            data, err := store.Marshal()
            if err != nil {
                return err
            }
            fmt.Fprintln(out, string(data))
        case fl.pretty:
            s, err := renderHistoryMarkdown(store.Entries(), time.Now())
            if err != nil {
                return err
            }
            fmt.Fprint(out, s)
        default:
            fmt.Fprint(out, entries.RenderList(store.Entries(), time.Now(), termWidth(), !isTerminal(os.Stdout)))
        }
    case "clear":
        n := store.Len()
        store.Clear()
        fmt.Fprintf(out, "history cleared (%d entries)\n", n)
    case "export":
        data, err := store.Marshal()
        if err != nil {
            return err
        }
        if fl.out == "" || fl.out == "-" {
            fmt.Fprintln(out, string(data))
            return nil
        }
        if err := os.WriteFile(fl.out, append(data, '\n'), 0o644); err != nil {
            return fmt.Errorf("export history: %w", err)
        }
        fmt.Fprintf(out, "exported %d entries to %s\n", store.Len(), fl.out)
    default:
        return fmt.Errorf("unknown history command %q (want list|clear|export)", sub)
    }
    return nil
}

// historyMarkdown lists entries as markdown with each entry in a LaTeX code block.
func historyMarkdown(list []history.Entry, now time.Time) string {
    var b strings.Builder
    b.WriteString("# History\n\n")
    if len(list) == 0 {
        b.WriteString("_Nothing committed yet._\n")
    }
    for i, e := range list {
        state := ""
        if e.Cleared {
            state = " · cleared"
        }
        fmt.Fprintf(&b, "## %d · %s%s\n\n```latex\n%s\n```\n\n", i+1, util.Ago(now, e.Time()), state, e.Latex)
    }
    return b.String()
}

func renderHistoryMarkdown(list []history.Entry, now time.Time) (string, error) {
    md := historyMarkdown(list, now)
    if !isTerminal(os.Stdout) {
        return md, nil
    }
    r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(termWidth()))
    if err != nil {
        return md, nil
    }
    out, err := r.Render(md)
    if err != nil {
        return md, nil
    }
    return out, nil
}

func cmdKeys(out io.Writer) error {
    fmt.Fprintln(out, "Keypad")
    fmt.Fprint(out, tui.KeypadText(editor.Unicode))
    fmt.Fprintln(out)
    fmt.Fprintln(out, "Matrix and proof-tree mode add:")
    for _, g := range []tokens.Group{tokens.MatrixKeys(), tokens.ProofTreeKeys()} {
        labels := make([]string, 0, len(g.Keys))
        for _, k := range g.Keys {
            labels = append(labels, fmt.Sprintf("%s (%s)", k.Label, k.Special))
        }
        fmt.Fprintf(out, "  %-11s %s\n", g.Title, strings.Join(labels, "  "))
    }
    fmt.Fprintln(out)
    fmt.Fprintln(out, "Symbols")
    tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
    for _, e := range tokens.Entries() {
        fmt.Fprintf(tw, "  %s\t%s\n", e.Glyph, strings.TrimSpace(e.Latex))
    }
    return tw.Flush()
}

func cmdConfig(args []string, out io.Writer) error {
    sub := "show"
    if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
        sub, args = args[0], args[1:]
    }
    fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "config") }
    cfgPath := fs.String("config", "", "Settings file (TOML or JSON)")
    asJSON := fs.Bool("json", false, "init: write config.json instead of config.toml")
    force := fs.Bool("force", false, "init: overwrite an existing file")
    if err := fs.Parse(args); err != nil {
        return err
    }
    path := *cfgPath
    if path == "" {
        dir, err := config.Dir()
        if err != nil {
            return err
        }
        if sub == "init" {
            name := "config.toml"
            if *asJSON {
                name = "config.json"
            }
            path = filepath.Join(dir, name)
        } else if path, err = config.DefaultPath(); err != nil {
            return err
        }
    }
    switch sub {
    case "init":
        return configInit(path, *force, out)
    case "show":
        c, err := config.Load(path)
        if err != nil {
            return err
        }
        fmt.Fprintf(out, "# %s\n", path)
        return config.Write(out, c, false)
    case "edit":
        if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
            return errors.New("config edit needs an interactive terminal")
        }
        c, err := config.Load(path)
        if err != nil {
            return err
        }
        saved, err := tui.EditSettings(path, c)
        if err != nil {
            return err
        }
        if saved {
            fmt.Fprintln(out, "Saved", path)
        }
        return nil
    default:
        return fmt.Errorf("unknown config command %q (want init|show|edit)", sub)
    }
}

func configInit(path string, force bool, out io.Writer) error {
    if _, err := os.Stat(path); err == nil && !force {
        fmt.Fprintln(out, path, "already exists; not overwriting (use --force)")
        return nil
    }
    if err := config.Save(path, config.Default()); err != nil {
        return err
    }
    fmt.Fprintln(out, "Wrote", path)
    return nil
}

/* ---------- repl ---------- */

func cmdRepl(args []string) error {
    fs := flag.NewFlagSet("repl", flag.ContinueOnError)
    fs.Usage = func() { helpTopic(os.Stderr, "repl") }
    mode := fs.String("mode", "", "Input mode: unicode|latex|matrix|prooftree")
    cfgPath := fs.String("config", "", "Settings file (TOML or JSON)")
    if err := fs.Parse(args); err != nil {
        return err
    }
    e, err := setup(*cfgPath, false)
    if err != nil {
        return err
    }
    defer e.Close()
    opts := e.cfg.EditorOptions()
    if *mode != "" {
        if opts.Mode, err = editor.ParseMode(*mode); err != nil {
            return err
        }
    }
    ropts := render.Options{
        Style:     e.cfg.Render.Style,
        Formatter: e.cfg.Render.Formatter,
        NoColor:   util.NoColor(e.cfg.Render.NoColor || !isTerminal(os.Stdout)),
    }
    r := newRepl(e.store, opts, clip.System{}, e.log.Logger, ropts, os.Stdout)
    defer r.sess.Close()

    line := liner.NewLiner()
    defer line.Close()
    line.SetCtrlCAborts(true)
    histFile := filepath.Join(config.DataDir(), "repl_history")
    if f, err := os.Open(histFile); err == nil {
        line.ReadHistory(f)
        f.Close()
    }
    defer func() {
        if err := os.MkdirAll(filepath.Dir(histFile), 0o755); err != nil {
            return
        }
        if f, err := os.OpenFile(histFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
            line.WriteHistory(f)
            f.Close()
        }
    }()

    fmt.Fprintf(os.Stdout, "mathpad %s, %s mode. :help for commands, ctrl+d to quit.\n", Version, opts.Mode.Title())
    for {
        input, err := line.Prompt(r.prompt())
        if err != nil {
            if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
                fmt.Println()
                return nil
            }
            return err
        }
        if strings.TrimSpace(input) != "" {
            line.AppendHistory(input)
        }
        if !r.handle(input) {
            return nil
        }
    }
}

// repl drives a Session one line at a time. Its manual timer is advanced
// past the debounce after every line, so each line is committed immediately.
type repl struct {
    sess  *editor.Session
    term  *render.Terminal
    timer *editor.ManualTimer
    store *history.Store
    opts  editor.Options
    out   io.Writer
}

func newRepl(store *history.Store, opts editor.Options, cw clip.Writer, log *slog.Logger, ropts render.Options, out io.Writer) *repl {
    timer := editor.NewManualTimer()
    t := render.NewTerminal(ropts)
    sess := editor.New(editor.Deps{History: store, Sink: t, Clipboard: cw, Timer: timer, Logger: log}, opts)
    return &repl{sess: sess, term: t, timer: timer, store: store, opts: sess.Options(), out: out}
}

func (r *repl) prompt() string { return string(r.sess.Mode()) + "> " }

// handle runs one input line and reports whether to keep reading.
func (r *repl) handle(input string) bool {
    text := strings.TrimSpace(input)
    if strings.HasPrefix(text, ":") {
        return r.command(text)
    }
    if text == "" {
        return true
    }
    switch r.sess.Mode() {
    case editor.Matrix, editor.ProofTree:
        raw := r.sess.Raw()
        if raw != "" {
            raw += "\n"
        }
        raw += input
        r.sess.Edit(raw, len([]rune(raw)))
    default:
        r.sess.Edit(input, len([]rune(input)))
    }
    r.settle()
    fmt.Fprintln(r.out, r.term.View())
    return true
}

func (r *repl) command(text string) bool {
    name, arg, _ := strings.Cut(strings.TrimPrefix(text, ":"), " ")
    arg = strings.TrimSpace(arg)
    switch name {
    case "q", "quit", "exit":
        r.sess.Flush()
        return false
    case "h", "help":
        helpTopic(r.out, "repl")
    case "mode":
        m, err := editor.ParseMode(arg)
        if err != nil {
            fmt.Fprintln(r.out, "!", err)
            return true
        }
        r.sess.SetMode(m)
        fmt.Fprintln(r.out, "mode:", m.Title())
    case "latex":
        fmt.Fprintln(r.out, r.sess.LatexText())
    case "copy":
        _ = r.sess.CopySymbols()
    case "copylatex":
        _ = r.sess.CopyLatex()
    case "clear":
        r.sess.Clear()
        fmt.Fprintln(r.out, "cleared")
    case "history":
        fmt.Fprint(r.out, entries.RenderList(r.store.Entries(), time.Now(), 80, true))
    default:
        fmt.Fprintf(r.out, "! unknown command :%s (try :help)\n", name)
    }
    r.settle()
    return true
}

// settle commits at once and prints what the session reported.
func (r *repl) settle() {
    r.timer.Advance(r.opts.Debounce)
    for _, n := range r.sess.Notices() {
        fmt.Fprintf(r.out, "! %s\n", n.Message)
    }
    if rw, ok := r.sess.LastRewrite(); ok {
        fmt.Fprintf(r.out, "~ cleaned %q -> %q\n", rw.Before, rw.After)
    }
}
