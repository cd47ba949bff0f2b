//go:build windows

package config

import (
    "os"
    "path/filepath"
)

// DataDir is where history and logs are kept: %LOCALAPPDATA%\mathpad.
func DataDir() string {
    if d := os.Getenv("LOCALAPPDATA"); d != "" {
        return filepath.Join(d, "mathpad")
    }
    if d, err := os.UserConfigDir(); err == nil {
        return filepath.Join(d, "mathpad", "data")
    }
    return filepath.Join(os.TempDir(), "mathpad")
}
