package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dustmask/dustmask/internal/types"
)

// ScanResults stores the regions and metadata from the last scan.
type ScanResults struct {
	Regions   []types.Region        `json:"regions"`
	Records   []types.RecordSummary `json:"records"`
	Timestamp time.Time             `json:"timestamp"`
	Root      string                `json:"root"`
	Count     int                   `json:"count"`
}

func resultsPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "dustmask_last_scan.json")
	}
	return filepath.Join(root, ".dustmask_last_scan.json")
}

// SaveResults saves scan results for later browsing.
func SaveResults(root string, regions []types.Region, records []types.RecordSummary) error {
	results := ScanResults{
		Regions:   regions,
		Records:   records,
		Timestamp: time.Now(),
		Root:      root,
		Count:     len(regions),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(root), b, 0644)
}

// LoadResults loads the last scan results.
func LoadResults(root string) (ScanResults, error) {
	var results ScanResults
	f, err := os.ReadFile(resultsPath(root))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
