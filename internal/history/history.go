// Package history keeps the bounded, newest-first log of committed editor
// contents and persists it through a kvstore.Store.
//
// Storage problems never reach the caller as failures: they are logged and
// the store carries on in memory.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"mathpad/internal/kvstore"
)

// DefaultKey is the version-namespaced key the log is stored under.
const DefaultKey = "mathpad-history-v1"

// DefaultMax is the number of entries kept.
const DefaultMax = 30

// Entry is one committed content. The JSON field names are the persisted
// layout and must not change without bumping DefaultKey.
type Entry struct {
	Latex     string `json:"latex"`
	Cleared   bool   `json:"cleared"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Time returns the commit time.
func (e Entry) Time() time.Time { return time.UnixMilli(e.Timestamp) }

type Options struct {
	Key    string
	Max    int
	Now    func() time.Time
	Logger *slog.Logger
}

// Store is the in-memory history with write-through persistence. It is not
// safe for concurrent use; the editor drives it from a single goroutine.
type Store struct {
	kv  kvstore.Store
	key string
	max int
	now func() time.Time
	log *slog.Logger

	entries  []Entry
	degraded bool
}

// New loads the persisted log from kv. A nil kv gives a memory-only store.
func New(kv kvstore.Store, opts Options) *Store {
	s := &Store{
		kv:  kv,
		key: opts.Key,
		max: opts.Max,
		now: opts.Now,
		log: opts.Logger,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.max <= 0 {
		s.max = DefaultMax
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = s.log.With("component", "history")
	if err := s.Reload(); err != nil {
		s.log.Warn("history unavailable, continuing in memory", "err", err)
		s.degraded = true
		s.entries = nil
	}
	return s
}

// Reload replaces the in-memory log with the persisted one. On error the
// current entries are kept.
func (s *Store) Reload() error {
	if s.kv == nil {
		return nil
	}
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		s.entries = nil
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("parse history: %w", err)
	}
	if len(entries) > s.max {
		entries = entries[:s.max]
	}
	s.entries = entries
	return nil
}

// Add commits content. Blank content and content equal to the newest entry
// are ignored. It reports whether an entry was added.
func (s *Store) Add(content string, cleared bool) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}
	if len(s.entries) > 0 && s.entries[0].Latex == content {
		return false
	}
	e := Entry{Latex: content, Cleared: cleared, Timestamp: s.now().UnixMilli()}
	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
	s.persist()
	return true
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.entries = nil
	s.persist()
}

// Entries returns a copy of the log, newest first.
func (s *Store) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s *Store) Len() int { return len(s.entries) }

// Head returns the newest entry.
func (s *Store) Head() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Degraded reports whether the last load or save failed.
func (s *Store) Degraded() bool { return s.degraded }

func (s *Store) Max() int { return s.max }

func (s *Store) persist() {
	if s.kv == nil {
		return
	}
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.log.Error("encode history", "err", err)
		s.degraded = true
		return
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		s.log.Warn("save history", "err", err)
		s.degraded = true
		return
	}
	s.degraded = false
}

// Marshal returns the log in its persisted JSON layout, indented.
func (s *Store) Marshal() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}
