package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/config"
)

// Prefs holds user preferences for the TUI that persist across sessions.
type Prefs struct {
	ShowDetail bool   `json:"show_detail"`
	SortBy     string `json:"sort_by"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{ShowDetail: true, SortBy: SortPosition}
}

func prefsPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tui_prefs.json"), nil
}

// LoadPrefs loads user preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()

	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	if prefs.SortBy != SortLength {
		prefs.SortBy = SortPosition
	}
	return prefs
}

// SavePrefs persists user preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
