package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/types"
)

// Entry remembers the outcome of scanning one file with given parameters.
type Entry struct {
	Hash       string                `json:"hash"` // xxhash64 of the raw file bytes
	WindowSize int                   `json:"window_size"`
	Threshold  int                   `json:"threshold"`
	Regions    []types.Region        `json:"regions,omitempty"`
	Records    []types.RecordSummary `json:"records,omitempty"`
}

// Matches reports whether the entry can stand in for a fresh scan.
func (e Entry) Matches(hash string, windowSize, threshold int) bool {
	return e.Hash != "" && e.Hash == hash && e.WindowSize == windowSize && e.Threshold == threshold
}

type DB struct {
	// Path relative to the scan root -> last scan of that file
	Entries map[string]Entry `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "dustmaskcache.json")
	}
	return filepath.Join(root, ".dustmaskcache.json")
}

func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.Marshal(db)
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0644)
}
