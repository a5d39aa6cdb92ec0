package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/dustmask/dustmask/internal/types"
	"golang.org/x/term"
)

// Document is the JSON report shape.
type Document struct {
	Regions []types.Region        `json:"regions"`
	Records []types.RecordSummary `json:"records"`
	Summary Summary               `json:"summary"`
}

// WriteJSON writes the report as indented JSON. With highlight set the
// output is colourised for a terminal.
func WriteJSON(w io.Writer, regions []types.Region, records []types.RecordSummary, opts PrintOptions, highlight bool) error {
	doc := Document{
		Regions: regions,
		Records: records,
		Summary: Summarize(regions, records, opts),
	}
	if doc.Regions == nil {
		doc.Regions = []types.Region{}
	}
	if doc.Records == nil {
		doc.Records = []types.RecordSummary{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if highlight {
		return Highlight(w, buf.String(), "json")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteBED writes one BED line per region.
func WriteBED(w io.Writer, regions []types.Region) error {
	bw := bufio.NewWriter(w)
	for _, r := range regions {
		if _, err := bw.WriteString(r.BED() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ShouldFail reports whether any record is masked at or above maxFraction.
// A non-positive maxFraction disables the check.
func ShouldFail(records []types.RecordSummary, maxFraction float64) bool {
	if maxFraction <= 0 {
		return false
	}
	for _, r := range records {
		if r.Length > 0 && r.Fraction() >= maxFraction {
			return true
		}
	}
	return false
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
