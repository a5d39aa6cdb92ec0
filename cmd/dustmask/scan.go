package dustmask

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustmask/dustmask/internal/artifacts"
	"github.com/dustmask/dustmask/internal/audit"
	"github.com/dustmask/dustmask/internal/cache"
	"github.com/dustmask/dustmask/internal/config"
	"github.com/dustmask/dustmask/internal/engine"
	"github.com/dustmask/dustmask/internal/git"
	"github.com/dustmask/dustmask/internal/report"
	"github.com/dustmask/dustmask/internal/sdust"
	"github.com/spf13/cobra"
)

var (
	flagRoot              string
	flagWindow            int
	flagThreshold         int
	flagInclude           string
	flagExclude           string
	flagMaxBytes          int64
	flagAllFiles          bool
	flagDefaultExcludes   bool
	flagDryRun            bool
	flagMaxMaskedFraction float64
	flagAudit             bool
	flagOutput            string
	// archive and image scanning
	flagArchives        bool
	flagImages          []string
	flagMaxArchiveBytes int64
	flagMaxEntries      int
	flagMaxDepth        int
	flagScanTimeBudget  time.Duration
	flagBase            string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Report low-complexity regions in FASTA files",
		Long:  "Scan walks the given files and directories (default: the root), finds low-complexity regions in every FASTA record and prints a report. Use - to read standard input.",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagRoot, "path", "p", ".", "root directory; paths are resolved against it")
	addScanParamFlags(cmd)
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<30, "skip files larger than this")
	cmd.Flags().BoolVar(&flagAllFiles, "all-files", false, "scan files regardless of extension")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (.snakemake, work, indexes, etc.)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list what would be scanned without reading files")
	cmd.Flags().Float64Var(&flagMaxMaskedFraction, "max-masked-fraction", 0, "exit 1 when a record is masked at or above this fraction (0 = off)")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a summary of this scan to the audit log")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&flagBase, "base", "", "only scan files changed since this git revision (branch, tag or commit)")
	addArchiveFlags(cmd)
}

func addArchiveFlags(cmd *cobra.Command) {
	def := artifacts.DefaultLimits()
	cmd.Flags().BoolVar(&flagArchives, "archives", false, "scan FASTA files inside zip/tar archives")
	cmd.Flags().StringArrayVar(&flagImages, "image", nil, "also scan a container image (registry ref or docker-save tarball); repeatable")
	cmd.Flags().Int64Var(&flagMaxArchiveBytes, "max-archive-bytes", def.MaxArchiveBytes, "max decompressed bytes per archive or image")
	cmd.Flags().IntVar(&flagMaxEntries, "max-entries", def.MaxEntries, "max FASTA members per archive or image")
	cmd.Flags().IntVar(&flagMaxDepth, "max-depth", def.MaxDepth, "max nesting of archives inside archives")
	cmd.Flags().DurationVar(&flagScanTimeBudget, "scan-time-budget", def.TimeBudget, "time budget per archive or image (e.g. 10m)")
}

// pickDuration is pickString for duration settings stored as text in config files.
func pickDuration(cmd *cobra.Command, name string, cli time.Duration, local, global *string) time.Duration {
	if cmd.Flags().Changed(name) {
		return cli
	}
	for _, v := range []*string{local, global} {
		if v == nil {
			continue
		}
		if d, err := time.ParseDuration(*v); err == nil {
			return d
		}
	}
	return cli
}

// addScanParamFlags registers the window and threshold flags shared by
// scan, mask and browse.
func addScanParamFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagWindow, "window", "w", sdust.DefaultWindowSize, "scanning window size (>= 3)")
	cmd.Flags().IntVarP(&flagThreshold, "threshold", "t", sdust.DefaultScoreThreshold, "score threshold (>= 0)")
}

// buildEngineConfig resolves CLI flags against the local and global config.
func buildEngineConfig(cmd *cobra.Command, root string, paths []string) (engine.Config, config.FileConfig, config.FileConfig, error) {
	gcfg, lcfg := loadConfigs(root)
	level := pickString(cmd, "log-level", flagLogLevel, lcfg.LogLevel, gcfg.LogLevel)
	log, err := newLogger(level)
	if err != nil {
		return engine.Config{}, gcfg, lcfg, err
	}

	cfg := engine.Config{
		Root:            root,
		Paths:           paths,
		WindowSize:      pickInt(cmd, "window", flagWindow, lcfg.WindowSize, gcfg.WindowSize),
		Threshold:       pickInt(cmd, "threshold", flagThreshold, lcfg.ScoreThreshold, gcfg.ScoreThreshold),
		Threads:         pickInt(cmd, "threads", flagThreads, lcfg.Threads, gcfg.Threads),
		NoCache:         flagNoCache,
		DefaultExcludes: true,
		Logger:          log,
		Stdin:           cmd.InOrStdin(),
	}
	if cmd.Flags().Lookup("include") != nil {
		cfg.IncludeGlobs = pickString(cmd, "include", flagInclude, lcfg.Include, gcfg.Include)
		cfg.ExcludeGlobs = pickString(cmd, "exclude", flagExclude, lcfg.Exclude, gcfg.Exclude)
		cfg.MaxBytes = pickInt64(cmd, "max-bytes", flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes)
		cfg.AllFiles = pickBool(cmd, "all-files", flagAllFiles, lcfg.AllFiles, gcfg.AllFiles)
		cfg.DefaultExcludes = pickBool(cmd, "default-excludes", flagDefaultExcludes, lcfg.DefaultExcludes, gcfg.DefaultExcludes)
		cfg.DryRun = flagDryRun
		cfg.BaseRef = flagBase
	}
	if cmd.Flags().Lookup("archives") != nil {
		cfg.Archives = pickBool(cmd, "archives", flagArchives, lcfg.Archives, gcfg.Archives)
		cfg.Images = flagImages
		cfg.ArchiveLimits = artifacts.Limits{
			MaxArchiveBytes: pickInt64(cmd, "max-archive-bytes", flagMaxArchiveBytes, lcfg.MaxArchiveBytes, gcfg.MaxArchiveBytes),
			MaxEntries:      pickInt(cmd, "max-entries", flagMaxEntries, lcfg.MaxEntries, gcfg.MaxEntries),
			MaxDepth:        pickInt(cmd, "max-depth", flagMaxDepth, lcfg.MaxDepth, gcfg.MaxDepth),
			TimeBudget:      pickDuration(cmd, "scan-time-budget", flagScanTimeBudget, lcfg.ScanTimeBudget, gcfg.ScanTimeBudget),
		}
	}
	return cfg, gcfg, lcfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(flagRoot)
	if err != nil {
		return err
	}
	cfg, gcfg, lcfg, err := buildEngineConfig(cmd, abs, args)
	if err != nil {
		return err
	}
	noColor := pickBool(cmd, "no-color", flagNoColor, lcfg.NoColor, gcfg.NoColor)
	maxFraction := pickFloat(cmd, "max-masked-fraction", flagMaxMaskedFraction, lcfg.MaxMaskedFraction, gcfg.MaxMaskedFraction)
	stderr := cmd.ErrOrStderr()

	interactive := format == "table" || format == "text"
	if interactive {
		printUpdateNotice(cmd)
		_, _ = fmt.Fprintf(stderr, "Scanning %s (window %d, threshold %d)...\n", abs, cfg.WindowSize, cfg.Threshold)
	}

	total := 0
	if interactive && !cfg.DryRun && report.IsTerminal(stderr) {
		total, _ = engine.CountTargets(cfg)
	}
	progressed := 0
	if total > 0 {
		cfg.Progress = func() {
			progressed++
			if progressed%10 == 0 || progressed == total {
				pct := float64(progressed) / float64(total) * 100
				_, _ = fmt.Fprintf(stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
	}

	res, err := engine.ScanContext(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if total > 0 {
		_, _ = fmt.Fprintln(stderr)
	}
	if st := res.ArtifactStats; st.Total() > 0 {
		_, _ = fmt.Fprintf(stderr, "warning: %d archives or images stopped early (bytes %d, entries %d, depth %d, time %d)\n",
			st.Total(), st.AbortedByBytes, st.AbortedByEntries, st.AbortedByDepth, st.AbortedByTime)
	}

	if cfg.DryRun {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Would scan %d files\n", res.FilesScanned)
		return nil
	}

	if err := cache.SaveResults(abs, res.Regions, res.Records); err != nil {
		cfg.Logger.WithError(err).Debug("could not save last scan results")
	}
	if pickBool(cmd, "audit", flagAudit, lcfg.Audit, gcfg.Audit) {
		rec := audit.CreateScanRecord(abs, cfg.WindowSize, cfg.Threshold, res.Regions, res.RecordsScanned, res.FilesScanned, res.Duration)
		md := git.RepoMetadata(abs)
		rec.Repo, rec.Commit, rec.Branch = md.Repo, md.Commit, md.Branch
		if err := audit.NewAuditLog(abs).LogScan(rec); err != nil {
			_, _ = fmt.Fprintln(stderr, "audit warning:", err)
		}
	}

	w, closeOut, err := openOutput(cmd, flagOutput)
	if err != nil {
		return err
	}
	opts := report.PrintOptions{
		NoColor:        noColor,
		Duration:       res.Duration,
		FilesScanned:   res.FilesScanned,
		RecordsScanned: res.RecordsScanned,
		RecordsSkipped: res.RecordsSkipped,
		CacheHits:      res.CacheHits,
	}
	switch format {
	case "json":
		err = report.WriteJSON(w, res.Regions, res.Records, opts, !noColor && report.IsTerminal(w))
	case "bed":
		err = report.WriteBED(w, res.Regions)
	case "text":
		report.PrintText(w, res.Regions, res.Records, opts)
	default:
		report.PrintTable(w, res.Regions, res.Records, opts)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if report.ShouldFail(res.Records, maxFraction) {
		return &exitError{code: 1}
	}
	return nil
}
