package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))
	require.NoError(t, s.Set("other", `["x"]`))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Close())
	_, _, err = s.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set("k", "v3"), ErrClosed)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "nested", "store.json"))
	require.NoError(t, err)
	exercise(t, f)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	a, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, a.Set("k", "from a"))

	b, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := b.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from a", v)
}

func TestFileCorruptReadsFailButWritesRecover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	f, err := OpenFile(path)
	require.NoError(t, err)

	_, _, err = f.Get("k")
	assert.Error(t, err)

	require.NoError(t, f.Set("k", "v"))
	v, _, err := f.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileWatchSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	watched, err := OpenFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := watched.Watch(ctx)
	require.NoError(t, err)

	writer, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, writer.Set("k", "v"))

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("no change notification")
	}

	cancel()
	for range ch {
	}
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	exercise(t, s)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "kept"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, b := range Backends() {
		s, err := Open(b, filepath.Join(dir, b+".store"))
		require.NoError(t, err, b)
		require.NoError(t, s.Close())
	}
	_, err := Open("redis", "")
	assert.True(t, errors.Is(err, ErrBackend))
}
