package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/dustmask/dustmask/internal/artifacts"
	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/dustmask/dustmask/internal/git"
	"github.com/dustmask/dustmask/internal/ignore"
)

// StdinPath selects standard input as a scan target.
const StdinPath = "-"

// Target is one file selected for scanning. Path is what gets reported and
// used as the cache key; Full is where the file is read from.
type Target struct {
	Path string
	Full string
	Size int64
}

// Walk visits every eligible file under cfg.Root, or under each of cfg.Paths
// when set, and calls handle for it. Files named explicitly in cfg.Paths are
// always visited; files found by walking a directory go through the default
// excludes, the include/exclude globs, the ignore matcher, the size limit and,
// unless cfg.AllFiles is set, the FASTA extension check; archives pass that
// check when cfg.Archives is set. With cfg.BaseRef set and no cfg.Paths, only
// files git reports as changed since that revision are candidates.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(Target) error) error {
	if cfg.BaseRef != "" && len(cfg.Paths) == 0 {
		return walkChanged(ctx, cfg, ign, handle)
	}
	paths := cfg.Paths
	if len(paths) == 0 {
		paths = []string{""}
	}
	for _, arg := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if arg == StdinPath {
			if err := handle(Target{Path: StdinPath, Full: StdinPath}); err != nil {
				return err
			}
			continue
		}
		start := filepath.Join(cfg.root(), arg)
		if filepath.IsAbs(arg) {
			start = arg
		}
		info, err := os.Stat(start)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
				continue
			}
			if err := handle(Target{Path: displayPath(arg, ""), Full: start, Size: info.Size()}); err != nil {
				return err
			}
			continue
		}
		if err := walkDir(ctx, cfg, ign, arg, start, handle); err != nil {
			return err
		}
	}
	return nil
}

func walkDir(ctx context.Context, cfg Config, ign ignore.Matcher, arg, start string, handle func(Target) error) error {
	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			cfg.logger().WithError(err).WithField("path", p).Warn("skipping unreadable path")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, _ := filepath.Rel(start, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if p != start && cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			if p != start && ign.Match(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !eligible(cfg, ign, rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !withinSize(cfg, rel, info.Size()) {
			return nil
		}
		return handle(Target{Path: displayPath(arg, rel), Full: p, Size: info.Size()})
	})
}

// eligible applies the per-file filters of a directory walk to rel.
func eligible(cfg Config, ign ignore.Matcher, rel string) bool {
	if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
		return false
	}
	if cfg.DefaultExcludes && hasExcludedDir(rel) {
		return false
	}
	archive := cfg.Archives && artifacts.IsArchivePath(rel)
	if cfg.AllFiles {
		return !cfg.DefaultExcludes || archive || !isDefaultFileExcluded(strings.ToLower(rel))
	}
	return archive || fasta.IsFASTAPath(rel)
}

func hasExcludedDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if isDefaultDirExcluded(dir) {
			return true
		}
	}
	return false
}

func withinSize(cfg Config, rel string, size int64) bool {
	if cfg.MaxBytes > 0 && size > cfg.MaxBytes {
		cfg.logger().WithField("path", rel).WithField("size", size).Debug("skipping file over max bytes")
		return false
	}
	return true
}

// walkChanged visits the files git reports as changed since cfg.BaseRef,
// filtered the same way as a directory walk.
func walkChanged(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(Target) error) error {
	changed, err := git.ChangedFiles(cfg.root(), cfg.BaseRef)
	if err != nil {
		return fmt.Errorf("changed files since %s: %w", cfg.BaseRef, err)
	}
	for _, rel := range changed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !eligible(cfg, ign, rel) {
			continue
		}
		full := filepath.Join(cfg.root(), filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() || !withinSize(cfg, rel, info.Size()) {
			continue
		}
		if err := handle(Target{Path: rel, Full: full, Size: info.Size()}); err != nil {
			return err
		}
	}
	return nil
}

func displayPath(arg, rel string) string {
	return filepath.ToSlash(filepath.Join(arg, rel))
}

// CountTargets returns the number of files Walk would visit for cfg.
func CountTargets(cfg Config) (int, error) {
	ign, err := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if err != nil {
		return 0, err
	}
	n := 0
	err = Walk(context.Background(), cfg, ign, func(Target) error {
		n++
		return nil
	})
	return n, err
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// glob configuration. Include globs are comma-separated and, if provided, act as
// a positive filter. Exclude globs are subtracted last.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := filepath.Base(pathToMatch)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
