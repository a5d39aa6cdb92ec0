package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/dustmask/dustmask/internal/artifacts"
	"github.com/dustmask/dustmask/internal/cache"
	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/dustmask/dustmask/internal/ignore"
	"github.com/dustmask/dustmask/internal/sdust"
	"github.com/dustmask/dustmask/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config controls scanning behavior including scope, performance, and filters.
type Config struct {
	Root            string
	Paths           []string // files or directories relative to Root; "-" reads stdin
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	Threads         int
	WindowSize      int
	Threshold       int
	DryRun          bool
	NoCache         bool
	DefaultExcludes bool
	AllFiles        bool
	Archives        bool     // also scan FASTA members of zip/tar archives
	Images          []string // container images (registry refs or docker-save tarballs) to scan
	ArchiveLimits   artifacts.Limits
	BaseRef         string // when set, only files changed since this git revision
	Progress        func()
	Logger          logrus.FieldLogger
	Stdin           io.Reader // defaults to os.Stdin
}

func (c Config) root() string {
	if c.Root == "" {
		return "."
	}
	return c.Root
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c Config) threads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.GOMAXPROCS(0)
}

// Result contains regions, per-record summaries and basic scan statistics.
type Result struct {
	Regions        []types.Region
	Records        []types.RecordSummary
	FilesScanned   int
	RecordsScanned int
	RecordsSkipped int // shorter than sdust.MinSequenceLength
	CacheHits      int
	ArtifactStats  artifacts.Stats
	Duration       time.Duration
}

// MaskedBases sums the lengths of all regions.
func (r Result) MaskedBases() int {
	n := 0
	for _, reg := range r.Regions {
		n += reg.Len()
	}
	return n
}

// Scan runs a scan and returns only regions (without stats).
func Scan(cfg Config) ([]types.Region, error) {
	res, err := ScanWithStats(cfg)
	if err != nil {
		return nil, err
	}
	return res.Regions, nil
}

// ScanWithStats runs a scan with a background context.
func ScanWithStats(cfg Config) (Result, error) {
	return ScanContext(context.Background(), cfg)
}

type recordResult struct {
	summary types.RecordSummary
	regions []types.Region
}

type fileResult struct {
	target  Target
	hash    string
	cached  bool
	records []*recordResult
}

// ScanContext scans every target selected by cfg. Records are scanned
// concurrently on up to cfg.Threads workers; files whose content and scan
// parameters match the cache are not rescanned. Results are ordered by file
// path, then record order, then region start.
func ScanContext(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	if err := sdust.ValidateWindow(cfg.WindowSize); err != nil {
		return result, err
	}
	if err := sdust.ValidateThreshold(cfg.Threshold); err != nil {
		return result, err
	}
	log := cfg.logger()
	started := time.Now()

	root := cfg.root()
	ign, err := ignore.Load(filepath.Join(root, ignore.FileName))
	if err != nil {
		return result, fmt.Errorf("load %s: %w", ignore.FileName, err)
	}

	var db cache.DB
	if !cfg.NoCache && !cfg.DryRun {
		db, _ = cache.Load(root)
	} else {
		db.Entries = map[string]cache.Entry{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.threads())

	var files []*fileResult
	// emitData is only ever called from the walking goroutine.
	emitData := func(t Target, data []byte) error {
		fr, err := scanData(gctx, g, cfg, db, t, data)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			log.WithError(err).WithField("path", t.Path).Warn("skipping file")
			return nil
		}
		files = append(files, fr)
		return nil
	}
	emitMember := func(path string, data []byte) error {
		return emitData(Target{Path: path, Full: path, Size: int64(len(data))}, data)
	}

	walkErr := Walk(gctx, cfg, ign, func(t Target) error {
		if cfg.Progress != nil {
			cfg.Progress()
		}
		if cfg.DryRun {
			files = append(files, &fileResult{target: t})
			return nil
		}
		if cfg.Archives && t.Path != StdinPath && artifacts.IsArchivePath(t.Path) {
			err := artifacts.ScanArchive(gctx, t.Full, t.Path, cfg.ArchiveLimits, &result.ArtifactStats, emitMember)
			if err != nil && gctx.Err() == nil {
				log.WithError(err).WithField("path", t.Path).Warn("skipping archive")
				return nil
			}
			return err
		}
		data, err := readTarget(cfg, t)
		if err != nil {
			log.WithError(err).WithField("path", t.Path).Warn("skipping file")
			return nil
		}
		return emitData(t, data)
	})
	for _, ref := range cfg.Images {
		if walkErr != nil || cfg.DryRun {
			break
		}
		if err := artifacts.ScanImage(gctx, ref, cfg.ArchiveLimits, &result.ArtifactStats, emitMember); err != nil {
			if gctx.Err() != nil {
				walkErr = gctx.Err()
				break
			}
			log.WithError(err).WithField("image", ref).Warn("skipping image")
		}
	}
	// wait before inspecting walkErr so no worker outlives the call
	if err := g.Wait(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		return result, walkErr
	}

	result.FilesScanned = len(files)
	sort.SliceStable(files, func(i, j int) bool { return files[i].target.Path < files[j].target.Path })
	updated := false
	for _, fr := range files {
		if fr.cached {
			result.CacheHits++
		}
		var entry cache.Entry
		for _, rr := range fr.records {
			result.Records = append(result.Records, rr.summary)
			result.Regions = append(result.Regions, rr.regions...)
			entry.Records = append(entry.Records, rr.summary)
			entry.Regions = append(entry.Regions, rr.regions...)
			if rr.summary.Length < sdust.MinSequenceLength {
				result.RecordsSkipped++
			} else {
				result.RecordsScanned++
			}
		}
		if !fr.cached && fr.hash != "" && fr.target.Path != StdinPath {
			entry.Hash, entry.WindowSize, entry.Threshold = fr.hash, cfg.WindowSize, cfg.Threshold
			db.Entries[fr.target.Path] = entry
			updated = true
		}
		log.WithFields(logrus.Fields{
			"path":    fr.target.Path,
			"records": len(fr.records),
			"cached":  fr.cached,
		}).Debug("scanned file")
	}

	if updated && !cfg.NoCache && !cfg.DryRun {
		if err := cache.Save(root, db); err != nil {
			log.WithError(err).Warn("could not save cache")
		}
	}
	result.Duration = time.Since(started)
	return result, nil
}

// scanData schedules one job per record of data on g. The returned
// fileResult is complete once g.Wait returns.
func scanData(ctx context.Context, g *errgroup.Group, cfg Config, db cache.DB, t Target, data []byte) (*fileResult, error) {
	fr := &fileResult{target: t, hash: fastHash(data)}
	if t.Path != StdinPath {
		if e, ok := db.Entries[t.Path]; ok && e.Matches(fr.hash, cfg.WindowSize, cfg.Threshold) {
			fr.cached = true
			fr.records = fromCache(e)
			return fr, nil
		}
	}

	r, err := fasta.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}
	err = fasta.Stream(ctx, r, func(rec fasta.Record) error {
		rr := &recordResult{summary: types.RecordSummary{
			Path:   t.Path,
			Record: recordName(rec, len(fr.records)),
			Length: len(rec.Seq),
		}}
		fr.records = append(fr.records, rr)
		if len(rec.Seq) < sdust.MinSequenceLength {
			return nil
		}
		g.Go(func() error {
			scanRecord(rr, rec.Seq, cfg.WindowSize, cfg.Threshold)
			return nil
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}
	return fr, nil
}

func scanRecord(rr *recordResult, seq []byte, windowSize, threshold int) {
	ivs := sdust.Scan(seq, windowSize, threshold)
	rr.regions = make([]types.Region, 0, len(ivs))
	for _, iv := range ivs {
		rr.regions = append(rr.regions, types.Region{
			Path:   rr.summary.Path,
			Record: rr.summary.Record,
			Start:  iv.Start,
			End:    iv.End,
			Bases:  types.Preview(seq, iv.Start, iv.End),
		})
	}
	rr.summary.Regions = len(ivs)
	rr.summary.Masked = sdust.MaskedBases(ivs)
}

// fromCache splits the cached regions back into their records; regions are
// stored in record order and each summary carries its region count.
func fromCache(e cache.Entry) []*recordResult {
	out := make([]*recordResult, 0, len(e.Records))
	regions := e.Regions
	for _, s := range e.Records {
		n := min(s.Regions, len(regions))
		out = append(out, &recordResult{summary: s, regions: regions[:n:n]})
		regions = regions[n:]
	}
	return out
}

func recordName(rec fasta.Record, index int) string {
	if rec.ID != "" {
		return rec.ID
	}
	return "record_" + strconv.Itoa(index+1)
}

func readTarget(cfg Config, t Target) ([]byte, error) {
	if t.Full == StdinPath {
		in := cfg.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.ReadAll(in)
	}
	return os.ReadFile(t.Full)
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
