package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustmask/dustmask/internal/types"
	"github.com/olekukonko/tablewriter"
)

type PrintOptions struct {
	NoColor        bool
	Duration       time.Duration
	FilesScanned   int
	RecordsScanned int
	RecordsSkipped int
	CacheHits      int
}

var (
	lengthStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	longStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// longRegion marks regions rendered in the alert colour.
const longRegion = 100

// PrintTable renders regions as a bordered table followed by the summary footer.
func PrintTable(w io.Writer, regions []types.Region, records []types.RecordSummary, opts PrintOptions) {
	if len(regions) == 0 {
		fmt.Fprintln(w, "No low-complexity regions found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Path", "Record", "Start", "End", "Length")
		for _, r := range regions {
			_ = table.Append([]string{r.Path, r.Record, strconv.Itoa(r.Start), strconv.Itoa(r.End), strconv.Itoa(r.Len())})
		}
		_ = table.Render()
	}
	printFooter(w, regions, records, opts)
}

// PrintText renders one region per line.
func PrintText(w io.Writer, regions []types.Region, records []types.RecordSummary, opts PrintOptions) {
	if len(regions) == 0 {
		fmt.Fprintln(w, "No low-complexity regions found ✅")
	} else {
		maxRec := 6
		for _, r := range regions {
			maxRec = max(maxRec, len(r.Record))
		}
		fmt.Fprintf(w, "Regions: %d\n", len(regions))
		for _, r := range regions {
			length := fmt.Sprintf("%6d", r.Len())
			path := r.Path
			if !opts.NoColor {
				length = colorLength(length, r.Len())
				path = pathStyle.Render(path)
			}
			fmt.Fprintf(w, "%s %-*s %9d-%-9d %s\n", length, maxRec, r.Record, r.Start, r.End, path)
		}
	}
	printFooter(w, regions, records, opts)
}

func colorLength(s string, n int) string {
	if n >= longRegion {
		return longStyle.Render(s)
	}
	return lengthStyle.Render(s)
}

// Summary holds the footer numbers, shared by the text and JSON outputs.
type Summary struct {
	Regions        int     `json:"regions"`
	MaskedBases    int     `json:"masked_bases"`
	TotalBases     int     `json:"total_bases"`
	MaskedFraction float64 `json:"masked_fraction"`
	RecordsScanned int     `json:"records_scanned"`
	RecordsSkipped int     `json:"records_skipped"`
	FilesScanned   int     `json:"files_scanned"`
	CacheHits      int     `json:"cache_hits"`
	DurationMillis int64   `json:"duration_ms"`
}

// Summarize computes the footer numbers.
func Summarize(regions []types.Region, records []types.RecordSummary, opts PrintOptions) Summary {
	s := Summary{
		Regions:        len(regions),
		RecordsScanned: opts.RecordsScanned,
		RecordsSkipped: opts.RecordsSkipped,
		FilesScanned:   opts.FilesScanned,
		CacheHits:      opts.CacheHits,
		DurationMillis: opts.Duration.Milliseconds(),
	}
	for _, r := range regions {
		s.MaskedBases += r.Len()
	}
	for _, rec := range records {
		s.TotalBases += rec.Length
	}
	if s.TotalBases > 0 {
		s.MaskedFraction = float64(s.MaskedBases) / float64(s.TotalBases)
	}
	return s
}

func printFooter(w io.Writer, regions []types.Region, records []types.RecordSummary, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	s := Summarize(regions, records, opts)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Regions: %d, masked bases: %d of %d (%.2f%%)\n", s.Regions, s.MaskedBases, s.TotalBases, 100*s.MaskedFraction)
	fmt.Fprintf(w, "Records scanned: %d", s.RecordsScanned)
	if s.RecordsSkipped > 0 {
		fmt.Fprintf(w, " (%d too short, skipped)", s.RecordsSkipped)
	}
	fmt.Fprintln(w)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d", opts.FilesScanned)
		if opts.CacheHits > 0 {
			fmt.Fprintf(w, " (%d from cache)", opts.CacheHits)
		}
		fmt.Fprintln(w)
	}
}
