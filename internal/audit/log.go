package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustmask/dustmask/internal/types"
	"github.com/google/uuid"
)

// topRegions caps how many regions a record keeps.
const topRegions = 10

type ScanRecord struct {
	Timestamp      time.Time       `json:"timestamp"`
	ScanID         string          `json:"scan_id"`
	Root           string          `json:"root"`
	Repo           string          `json:"repo,omitempty"`
	Commit         string          `json:"commit,omitempty"`
	Branch         string          `json:"branch,omitempty"`
	WindowSize     int             `json:"window_size"`
	Threshold      int             `json:"threshold"`
	TotalRegions   int             `json:"total_regions"`
	MaskedBases    int             `json:"masked_bases"`
	RecordsScanned int             `json:"records_scanned"`
	FilesScanned   int             `json:"files_scanned"`
	Duration       string          `json:"duration"`
	TopRegions     []RegionSummary `json:"top_regions,omitempty"`
}

// RegionSummary is a region without its bases.
type RegionSummary struct {
	Path   string `json:"path"`
	Record string `json:"record"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(root string) *AuditLog {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".dustmask_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "dustmask_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the location of the JSONL log.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Malformed lines are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = uuid.NewString()
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index in LoadHistory order.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}

	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// CreateScanRecord summarises a finished scan. The longest regions are kept
// as TopRegions.
func CreateScanRecord(
	root string,
	windowSize, threshold int,
	regions []types.Region,
	recordsScanned, filesScanned int,
	duration time.Duration,
) ScanRecord {
	masked := 0
	for _, r := range regions {
		masked += r.Len()
	}

	longest := append([]types.Region(nil), regions...)
	sort.SliceStable(longest, func(i, j int) bool { return longest[i].Len() > longest[j].Len() })
	top := make([]RegionSummary, 0, topRegions)
	for i, r := range longest {
		if i >= topRegions {
			break
		}
		top = append(top, RegionSummary{Path: r.Path, Record: r.Record, Start: r.Start, End: r.End})
	}

	return ScanRecord{
		Timestamp:      time.Now(),
		ScanID:         uuid.NewString(),
		Root:           root,
		WindowSize:     windowSize,
		Threshold:      threshold,
		TotalRegions:   len(regions),
		MaskedBases:    masked,
		RecordsScanned: recordsScanned,
		FilesScanned:   filesScanned,
		Duration:       duration.String(),
		TopRegions:     top,
	}
}
