//go:build !windows

package config

import (
    "os"
    "path/filepath"
)

// DataDir is where history and logs are kept: $XDG_DATA_HOME/mathpad, or
// ~/.local/share/mathpad.
func DataDir() string {
    if x := os.Getenv("XDG_DATA_HOME"); x != "" {
        return filepath.Join(x, "mathpad")
    }
    if h, err := os.UserHomeDir(); err == nil {
        return filepath.Join(h, ".local", "share", "mathpad")
    }
    return filepath.Join(os.TempDir(), "mathpad")
}
