package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "dustmask.yaml", "threads: 4\nmax_bytes: 123\nwindow_size: 32\nscore_threshold: 10\nmask_mode: hard\nmax_masked_fraction: 0.5\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 4 {
		t.Fatalf("expected threads=4, got %#v", cfg.Threads)
	}
	if cfg.MaxBytes == nil || *cfg.MaxBytes != 123 {
		t.Fatalf("expected max_bytes=123, got %#v", cfg.MaxBytes)
	}
	if cfg.WindowSize == nil || *cfg.WindowSize != 32 {
		t.Fatalf("expected window_size=32, got %#v", cfg.WindowSize)
	}
	if cfg.ScoreThreshold == nil || *cfg.ScoreThreshold != 10 {
		t.Fatalf("expected score_threshold=10, got %#v", cfg.ScoreThreshold)
	}
	if cfg.MaskMode == nil || *cfg.MaskMode != "hard" {
		t.Fatalf("expected mask_mode=hard, got %#v", cfg.MaskMode)
	}
	if cfg.MaxMaskedFraction == nil || *cfg.MaxMaskedFraction != 0.5 {
		t.Fatalf("expected max_masked_fraction=0.5, got %#v", cfg.MaxMaskedFraction)
	}
	if cfg.NoColor != nil {
		t.Fatalf("unset fields must stay nil")
	}
}

func TestLoadFile_ArchiveSettings(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "dustmask.yml", "archives: true\nmax_archive_bytes: 1024\nmax_entries: 5\nmax_depth: 1\nscan_time_budget: 30s\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Archives == nil || !*cfg.Archives {
		t.Fatalf("expected archives=true, got %#v", cfg.Archives)
	}
	if cfg.MaxArchiveBytes == nil || *cfg.MaxArchiveBytes != 1024 {
		t.Fatalf("expected max_archive_bytes=1024, got %#v", cfg.MaxArchiveBytes)
	}
	if cfg.MaxEntries == nil || *cfg.MaxEntries != 5 || cfg.MaxDepth == nil || *cfg.MaxDepth != 1 {
		t.Fatalf("unexpected entry/depth limits: %#v %#v", cfg.MaxEntries, cfg.MaxDepth)
	}
	if cfg.ScanTimeBudget == nil || *cfg.ScanTimeBudget != "30s" {
		t.Fatalf("expected scan_time_budget=30s, got %#v", cfg.ScanTimeBudget)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "bad.yml", "window_size: [1, 2\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "dustmask.yaml", "threads: 1\n")
	writeTemp(t, dir, ".dustmask.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .dustmask.yaml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "dustmask")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yml"), []byte("threads: 9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".dustmask.yml")
	if err := WriteFile(p, Default(), false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WindowSize == nil || *cfg.WindowSize != 64 || cfg.ScoreThreshold == nil || *cfg.ScoreThreshold != 20 {
		t.Fatalf("defaults not round-tripped: %#v", cfg)
	}
	if err := WriteFile(p, Default(), false); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := WriteFile(p, Default(), true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
