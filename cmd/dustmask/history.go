package dustmask

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/dustmask/dustmask/internal/audit"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log of previous scans",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagRoot, "path", "p", ".", "repository whose audit log to read")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "show at most this many scans (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	abs, err := filepath.Abs(flagRoot)
	if err != nil {
		return err
	}
	records, err := audit.NewAuditLog(abs).LoadHistory()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}

	out := cmd.OutOrStdout()
	if flagJSON || flagFormat == "json" {
		if records == nil {
			records = []audit.ScanRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No scans recorded (use 'dustmask scan --audit')")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("When", "Scan", "Window", "Threshold", "Files", "Records", "Regions", "Masked", "Duration")
	for _, r := range records {
		id := r.ScanID
		if len(id) > 8 {
			id = id[:8]
		}
		_ = table.Append([]string{
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			id,
			strconv.Itoa(r.WindowSize),
			strconv.Itoa(r.Threshold),
			strconv.Itoa(r.FilesScanned),
			strconv.Itoa(r.RecordsScanned),
			strconv.Itoa(r.TotalRegions),
			strconv.Itoa(r.MaskedBases),
			r.Duration,
		})
	}
	return table.Render()
}
