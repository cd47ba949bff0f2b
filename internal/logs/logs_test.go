package logs

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerCarriesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mathpad.log")
	l, err := New(Options{Path: path, Level: "info"})
	require.NoError(t, err)
	require.NotEmpty(t, l.Session)

	l.Debug("hidden")
	l.Info("committed", "entries", 3)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "msg=committed")
	assert.Contains(t, out, "session="+l.Session)
	assert.NotContains(t, out, "hidden")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNoOutputsStillLogs(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	l.Info("dropped")
	assert.NoError(t, l.Close())
}

func TestJournalKey(t *testing.T) {
	assert.Equal(t, "SESSION_ID", journalKey("session-id"))
	assert.Equal(t, "ERR", journalKey("err"))
	assert.False(t, strings.ContainsAny(journalKey("a.b c"), ". "))
}
