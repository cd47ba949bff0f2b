// Package kvstore is the small string key/value persistence layer behind the
// history. Three backends share one interface: an in-process map, a JSON file
// that can be watched for changes by other instances, and a SQLite table.
package kvstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// ErrBackend is returned by Open for an unknown backend name.
var ErrBackend = errors.New("kvstore: unknown backend")

// Store is a synchronous string key/value store. Implementations may fail on
// I/O; callers decide how to degrade.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// Open returns the named backend rooted at path. path is ignored for memory.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrBackend, backend)
	}
}

// Memory keeps values in a map. It never fails except after Close.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
