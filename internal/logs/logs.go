// Package logs builds the process logger. Output goes to a log file and,
// when asked, to the systemd journal; never to the terminal the TUI owns.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

type Options struct {
	Path    string // log file; empty disables file output
	Level   string // debug | info | warn | error
	Journal bool
}

// Logger is the process logger plus whatever it holds open.
type Logger struct {
	*slog.Logger
	Session string

	closers []io.Closer
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

// ParseLevel maps a level name to slog.Level. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// New opens the configured outputs. Every record carries a session id so
// concurrent instances can be told apart in a shared file or the journal.
// A journal that cannot be reached is reported through the file handler and
// otherwise ignored.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := &Logger{Session: uuid.NewString()}

	var handlers []slog.Handler
	var fileHandler slog.Handler
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out.closers = append(out.closers, f)
		fileHandler = slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, fileHandler)
	}

	if opts.Journal {
		jh, err := slogjournal.NewHandler(&slogjournal.Options{
			Level:        level,
			ReplaceGroup: journalKey,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			if fileHandler != nil {
				slog.New(fileHandler).Warn("systemd journal unavailable", "err", err)
			}
		} else {
			handlers = append(handlers, jh)
		}
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, nil)
	case 1:
		h = handlers[0]
	default:
		h = slogmulti.Fanout(handlers...)
	}
	out.Logger = slog.New(h).With("session", out.Session)
	return out, nil
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// journalKey maps an attribute key to the upper-case form journald accepts.
func journalKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(s))
}
