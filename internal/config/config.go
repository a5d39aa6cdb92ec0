package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for dustmask.
// Nil fields are unset and fall through to the next source.
type FileConfig struct {
	WindowSize      *int    `yaml:"window_size,omitempty"`
	ScoreThreshold  *int    `yaml:"score_threshold,omitempty"`
	Include         *string `yaml:"include,omitempty"`
	Exclude         *string `yaml:"exclude,omitempty"`
	MaxBytes        *int64  `yaml:"max_bytes,omitempty"`
	Threads         *int    `yaml:"threads,omitempty"`
	NoColor         *bool   `yaml:"no_color,omitempty"`
	DefaultExcludes *bool   `yaml:"default_excludes,omitempty"`
	AllFiles        *bool   `yaml:"all_files,omitempty"`
	LogLevel        *string `yaml:"log_level,omitempty"`
	Audit           *bool   `yaml:"audit,omitempty"`

	// Archives and container images
	Archives        *bool   `yaml:"archives,omitempty"`
	MaxArchiveBytes *int64  `yaml:"max_archive_bytes,omitempty"`
	MaxEntries      *int    `yaml:"max_entries,omitempty"`
	MaxDepth        *int    `yaml:"max_depth,omitempty"`
	ScanTimeBudget  *string `yaml:"scan_time_budget,omitempty"`

	// Masking output
	MaskMode  *string `yaml:"mask_mode,omitempty"`
	LineWidth *int    `yaml:"line_width,omitempty"`

	// Policy: fail the scan when any record is masked at or above this fraction
	MaxMaskedFraction *float64 `yaml:"max_masked_fraction,omitempty"`
}

// LocalNames lists the repo-local config file names in search order.
var LocalNames = []string{".dustmask.yml", ".dustmask.yaml", "dustmask.yml", "dustmask.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// Dir returns the dustmask directory under XDG_CONFIG_HOME or ~/.config.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "dustmask"), nil
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	dir, err := Dir()
	if err != nil {
		return cfg, err
	}
	p := filepath.Join(dir, "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Default returns a fully populated configuration with the built-in defaults.
func Default() FileConfig {
	window, threshold := 64, 20
	include, exclude := "", ""
	maxBytes := int64(1 << 30)
	threads := 0
	defaultExcludes, allFiles, audit := true, false, false
	mode, width := "soft", 60
	level := "warn"
	return FileConfig{
		WindowSize:      &window,
		ScoreThreshold:  &threshold,
		Include:         &include,
		Exclude:         &exclude,
		MaxBytes:        &maxBytes,
		Threads:         &threads,
		DefaultExcludes: &defaultExcludes,
		AllFiles:        &allFiles,
		Audit:           &audit,
		MaskMode:        &mode,
		LineWidth:       &width,
		LogLevel:        &level,
	}
}

// WriteFile encodes cfg as YAML at path, refusing to overwrite unless force.
func WriteFile(path string, cfg FileConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(path + " already exists")
		}
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
