package dustmask

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dustmask/dustmask/internal/audit"
	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/dustmask/dustmask/internal/report"
	"github.com/dustmask/dustmask/internal/sdust"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFASTA = ">r1 homopolymers\nTACCCCCCCGCGTTTTTTT\n>r2\nGTACCCCCCCGTAACGTTTTT\n>tiny\nACG\n"

const maskedSoft = ">r1 homopolymers\nTAcccccccGCGttttttt\n>r2\nGTAcccccccGTAACGTTTTT\n>tiny\nACG\n"

// resetFlags restores every flag of the command tree to its default so
// in-process runs do not leak state into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CI", "1")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.fa"), []byte(sampleFASTA), 0o644))
	return dir
}

func TestCLI_ScanJSON(t *testing.T) {
	dir := writeSample(t)
	out, _, err := runCLI(t, "", "scan", "--json", "-p", dir)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Regions, 3)
	assert.Equal(t, "r1", doc.Regions[0].Record)
	assert.Equal(t, 2, doc.Regions[0].Start)
	assert.Equal(t, 9, doc.Regions[0].End)
	assert.Len(t, doc.Records, 3)
}

func TestCLI_ScanBED(t *testing.T) {
	dir := writeSample(t)
	out, _, err := runCLI(t, "", "scan", "--format", "bed", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, "r1\t2\t9\nr1\t12\t19\nr2\t3\t10\n", out)
}

func TestCLI_ScanTableToFile(t *testing.T) {
	dir := writeSample(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")
	out, stderr, err := runCLI(t, "", "scan", "--no-color", "-p", dir, "-o", reportPath)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Scanning")

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sample.fa")
	assert.Contains(t, string(b), "Regions: 3")
}

func TestCLI_ScanArchives(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("refs/sample.fa")
	require.NoError(t, err)
	_, _ = w.Write([]byte(sampleFASTA))
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs.zip"), buf.Bytes(), 0o644))

	out, _, err := runCLI(t, "", "scan", "--json", "-p", dir)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Regions)

	out, _, err = runCLI(t, "", "scan", "--json", "--archives", "-p", dir)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Regions, 3)
	assert.Equal(t, "refs.zip::refs/sample.fa", doc.Regions[0].Path)
}

func TestCLI_ScanStdin(t *testing.T) {
	out, _, err := runCLI(t, sampleFASTA, "scan", "--format", "bed", "-p", t.TempDir(), "-")
	require.NoError(t, err)
	assert.Equal(t, "r1\t2\t9\nr1\t12\t19\nr2\t3\t10\n", out)
}

func TestCLI_ScanMaxMaskedFractionExitCode(t *testing.T) {
	dir := writeSample(t)
	_, _, err := runCLI(t, "", "scan", "--json", "--max-masked-fraction", "0.5", "-p", dir)
	var ee *exitError
	require.True(t, errors.As(err, &ee), "want exitError, got %v", err)
	assert.Equal(t, 1, ee.code)

	_, _, err = runCLI(t, "", "scan", "--json", "--max-masked-fraction", "0.9", "-p", dir)
	assert.NoError(t, err)
}

func TestCLI_ScanDryRun(t *testing.T) {
	dir := writeSample(t)
	out, _, err := runCLI(t, "", "scan", "--json", "--dry-run", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, "Would scan 1 files\n", out)
	_, statErr := os.Stat(filepath.Join(dir, ".dustmaskcache.json"))
	assert.True(t, os.IsNotExist(statErr), "dry run must not write the cache")
}

func TestCLI_ScanInvalidWindow(t *testing.T) {
	dir := writeSample(t)
	_, _, err := runCLI(t, "", "scan", "--json", "-w", "2", "-p", dir)
	var winErr *sdust.WindowSizeError
	assert.True(t, errors.As(err, &winErr), "got %v", err)
}

func TestCLI_ScanInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, "", "scan", "--format", "xml", "-p", t.TempDir())
	assert.ErrorContains(t, err, "unsupported --format")
}

func TestCLI_LocalConfigPrecedence(t *testing.T) {
	dir := writeSample(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dustmask.yml"), []byte("score_threshold: 128\n"), 0o644))

	out, _, err := runCLI(t, "", "scan", "--format", "bed", "-p", dir)
	require.NoError(t, err)
	assert.Empty(t, out, "threshold 128 from the local config finds nothing")

	out, _, err = runCLI(t, "", "scan", "--format", "bed", "-t", "20", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"), "an explicit flag beats the config file")
}

func TestCLI_AuditAndHistory(t *testing.T) {
	dir := writeSample(t)
	_, _, err := runCLI(t, "", "scan", "--json", "--audit", "-p", dir)
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "history", "--json", "-p", dir)
	require.NoError(t, err)
	var records []audit.ScanRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records), out)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].TotalRegions)
	assert.Equal(t, 21, records[0].MaskedBases)
	assert.NotEmpty(t, records[0].ScanID)

	out, _, err = runCLI(t, "", "history", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, records[0].ScanID[:8])
}

func TestCLI_HistoryEmpty(t *testing.T) {
	out, _, err := runCLI(t, "", "history", "-p", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scans recorded")
}

func TestCLI_MaskStdin(t *testing.T) {
	out, stderr, err := runCLI(t, sampleFASTA, "mask", "-")
	require.NoError(t, err)
	assert.Equal(t, maskedSoft, out)
	assert.Contains(t, stderr, "3 records, 21 masked bases, 2 changed, 1 too short")
}

func TestCLI_MaskHardGzipOutput(t *testing.T) {
	dir := writeSample(t)
	dst := filepath.Join(t.TempDir(), "masked.fa.gz")
	_, _, err := runCLI(t, "", "mask", "--hard", "-o", dst, filepath.Join(dir, "sample.fa"))
	require.NoError(t, err)

	rc, err := fasta.Open(dst)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(b), "TANNNNNNNGCGNNNNNNN")
}

func TestCLI_MaskInPlace(t *testing.T) {
	dir := writeSample(t)
	path := filepath.Join(dir, "sample.fa")

	out, _, err := runCLI(t, "", "mask", "--in-place", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "would change=true")
	b, _ := os.ReadFile(path)
	assert.Equal(t, sampleFASTA, string(b))

	_, stderr, err := runCLI(t, "", "mask", "--in-place", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "masked")
	b, _ = os.ReadFile(path)
	assert.Equal(t, maskedSoft, string(b))
}

func TestCLI_MaskInPlaceStdinRejected(t *testing.T) {
	_, _, err := runCLI(t, sampleFASTA, "mask", "--in-place", "-")
	assert.ErrorContains(t, err, "--in-place")
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dustmask.yml")
	out, _, err := runCLI(t, "", "config", "init", "--output", path, "--add-ignore", "-w", "32")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "window_size: 32")

	gi, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gi), ".dustmaskcache.json")

	_, _, err = runCLI(t, "", "config", "init", "--output", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestCLI_VersionAndCompletion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dustmask v"+version+"\n", out)

	out, _, err = runCLI(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "dustmask")

	_, _, err = runCLI(t, "", "completion", "tcsh")
	assert.ErrorContains(t, err, "unsupported shell")
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", l.GetLevel().String())

	l, err = newLogger("")
	require.NoError(t, err)
	assert.Equal(t, "warning", l.GetLevel().String())

	_, err = newLogger("loud")
	assert.Error(t, err)
}
