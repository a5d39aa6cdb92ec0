package types

import "strconv"

// MaxRegionPreview caps the number of bytes of a region kept in Region.Bases.
const MaxRegionPreview = 120

// Region describes one low-complexity interval found in a record of a FASTA
// file. Start and End are 0-based and half-open.
type Region struct {
	Path   string `json:"path"`
	Record string `json:"record"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Bases  string `json:"bases,omitempty"` // region text, truncated to MaxRegionPreview
}

func (r Region) Len() int { return r.End - r.Start }

// BED renders the region as a three-column BED line without a newline.
func (r Region) BED() string {
	return r.Record + "\t" + strconv.Itoa(r.Start) + "\t" + strconv.Itoa(r.End)
}

// Preview returns the bases of seq covered by [start,end), truncated for display.
func Preview(seq []byte, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(seq) {
		end = len(seq)
	}
	if start >= end {
		return ""
	}
	if end-start > MaxRegionPreview {
		return string(seq[start:start+MaxRegionPreview]) + "…"
	}
	return string(seq[start:end])
}

// RecordSummary aggregates the regions of a single record.
type RecordSummary struct {
	Path    string `json:"path"`
	Record  string `json:"record"`
	Length  int    `json:"length"`
	Masked  int    `json:"masked"`
	Regions int    `json:"regions"`
}

// Fraction is the share of the record covered by regions, 0 for empty records.
func (s RecordSummary) Fraction() float64 {
	if s.Length == 0 {
		return 0
	}
	return float64(s.Masked) / float64(s.Length)
}
