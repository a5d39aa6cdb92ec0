package tui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPrefs(t *testing.T) {
	prefs := DefaultPrefs()
	if !prefs.ShowDetail {
		t.Error("DefaultPrefs().ShowDetail should be true")
	}
	if prefs.SortBy != SortPosition {
		t.Errorf("DefaultPrefs().SortBy = %q, want %q", prefs.SortBy, SortPosition)
	}
}

func TestLoadPrefs_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	prefs := LoadPrefs()
	if prefs != DefaultPrefs() {
		t.Errorf("LoadPrefs() with no file = %+v, want defaults", prefs)
	}
}

func TestSaveAndLoadPrefs(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if err := SavePrefs(Prefs{ShowDetail: false, SortBy: SortLength}); err != nil {
		t.Fatalf("SavePrefs failed: %v", err)
	}

	prefsFile := filepath.Join(tmpDir, "dustmask", "tui_prefs.json")
	if _, err := os.Stat(prefsFile); os.IsNotExist(err) {
		t.Fatal("prefs file was not created")
	}

	loaded := LoadPrefs()
	if loaded.ShowDetail {
		t.Error("Loaded prefs should have ShowDetail=false")
	}
	if loaded.SortBy != SortLength {
		t.Errorf("Loaded SortBy = %q, want %q", loaded.SortBy, SortLength)
	}
}

func TestLoadPrefs_UnknownSort(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	dir := filepath.Join(tmpDir, "dustmask")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tui_prefs.json"), []byte(`{"show_detail":true,"sort_by":"severity"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := LoadPrefs().SortBy; got != SortPosition {
		t.Errorf("SortBy = %q, want %q", got, SortPosition)
	}
}
