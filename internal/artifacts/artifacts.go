// Package artifacts finds FASTA files packed inside archives and container
// images and hands their bytes to a callback without extracting to disk.
package artifacts

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/klauspost/compress/gzip"
)

// Sep joins an archive path and the name of a member inside it.
const Sep = "::"

// Limits controls bounded deep scanning of archives and images.
type Limits struct {
	MaxArchiveBytes int64 // decompressed bytes read per artifact
	MaxEntries      int   // FASTA members emitted per artifact
	MaxDepth        int   // nesting of archives inside archives
	TimeBudget      time.Duration
}

// DefaultLimits suits reference-genome bundles.
func DefaultLimits() Limits {
	return Limits{
		MaxArchiveBytes: 8 << 30,
		MaxEntries:      10000,
		MaxDepth:        2,
		TimeBudget:      10 * time.Minute,
	}
}

// Stats counts artifacts whose scan stopped at a limit.
type Stats struct {
	AbortedByBytes   int
	AbortedByEntries int
	AbortedByDepth   int
	AbortedByTime    int
}

func (s *Stats) add(reason string) {
	if s == nil {
		return
	}
	switch reason {
	case "bytes":
		s.AbortedByBytes++
	case "entries":
		s.AbortedByEntries++
	case "depth":
		s.AbortedByDepth++
	case "time":
		s.AbortedByTime++
	}
}

// Total is the number of aborted artifacts.
func (s Stats) Total() int {
	return s.AbortedByBytes + s.AbortedByEntries + s.AbortedByDepth + s.AbortedByTime
}

// EmitFunc receives the virtual path and raw bytes of a FASTA member. The
// bytes may still be gzip-compressed when the member name ends in .gz.
type EmitFunc func(path string, data []byte) error

// errBudget stops a walk once a limit is hit; it never escapes the package.
var errBudget = errors.New("artifact budget exceeded")

// IsArchivePath reports whether path names a zip or tar archive. Plain .gz
// files are not archives; gzipped FASTA is read directly by the scanner.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".zip", ".tar", ".tar.gz", ".tgz"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ScanArchive emits every FASTA member of the archive at full. display is the
// name used in emitted paths. Hitting a limit ends the scan early without an
// error and is counted in stats.
func ScanArchive(ctx context.Context, full, display string, limits Limits, stats *Stats, emit EmitFunc) error {
	f, err := os.Open(full)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := newWalker(ctx, limits, stats, emit)
	if err := w.archive(display, display, f, 0); err != nil && !errors.Is(err, errBudget) {
		return err
	}
	return nil
}

type walker struct {
	ctx          context.Context
	limits       Limits
	stats        *Stats
	emit         EmitFunc
	deadline     time.Time
	decompressed int64
	entries      int
}

func newWalker(ctx context.Context, limits Limits, stats *Stats, emit EmitFunc) *walker {
	w := &walker{ctx: ctx, limits: limits, stats: stats, emit: emit}
	if limits.TimeBudget > 0 {
		w.deadline = time.Now().Add(limits.TimeBudget)
	}
	return w
}

// check returns errBudget, recording why, once any limit is exhausted.
func (w *walker) check(depth int) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	reason := ""
	switch {
	case w.limits.MaxEntries > 0 && w.entries >= w.limits.MaxEntries:
		reason = "entries"
	case w.limits.MaxArchiveBytes > 0 && w.decompressed >= w.limits.MaxArchiveBytes:
		reason = "bytes"
	case w.limits.MaxDepth > 0 && depth > w.limits.MaxDepth:
		reason = "depth"
	case !w.deadline.IsZero() && time.Now().After(w.deadline):
		reason = "time"
	}
	if reason == "" {
		return nil
	}
	w.stats.add(reason)
	return errBudget
}

func (w *walker) archive(chain, name string, r io.Reader, depth int) error {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		ra, size, err := readerAt(r)
		if err != nil {
			return fmt.Errorf("%s: %w", chain, err)
		}
		zr, err := zip.NewReader(ra, size)
		if err != nil {
			return fmt.Errorf("%s: %w", chain, err)
		}
		return w.zip(chain+Sep, zr, depth)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("%s: %w", chain, err)
		}
		defer func() { _ = gz.Close() }()
		return w.tar(chain+Sep, gz, depth)
	case strings.HasSuffix(lower, ".tar"):
		return w.tar(chain+Sep, r, depth)
	}
	return nil
}

func readerAt(r io.Reader) (io.ReaderAt, int64, error) {
	switch v := r.(type) {
	case *os.File:
		fi, err := v.Stat()
		if err != nil {
			return nil, 0, err
		}
		return v, fi.Size(), nil
	case *bytes.Reader:
		return v, v.Size(), nil
	}
	return nil, 0, errors.New("zip needs a seekable reader")
}

func (w *walker) zip(prefix string, zr *zip.Reader, depth int) error {
	for _, f := range zr.File {
		if err := w.check(depth); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		err = w.member(prefix, f.Name, rc, depth)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) tar(prefix string, r io.Reader, depth int) error {
	tr := tar.NewReader(r)
	for {
		if err := w.check(depth); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(prefix, Sep), err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := w.member(prefix, hdr.Name, tr, depth); err != nil {
			return err
		}
	}
}

// member emits FASTA members and descends into nested archives.
func (w *walker) member(prefix, name string, r io.Reader, depth int) error {
	switch {
	case fasta.IsFASTAPath(name):
		b, err := w.read(r)
		if err != nil {
			return err
		}
		w.entries++
		return w.emit(prefix+name, b)
	case IsArchivePath(name) && depth < w.limits.MaxDepth:
		b, err := w.read(r)
		if err != nil {
			return err
		}
		err = w.archive(prefix+name, name, bytes.NewReader(b), depth+1)
		if err != nil && !errors.Is(err, errBudget) && w.ctx.Err() == nil {
			// a corrupt nested archive does not end the outer one
			return nil
		}
		return err
	}
	return nil
}

// read copies r in chunks, charging the byte budget and checking the
// deadline between chunks.
func (w *walker) read(r io.Reader) ([]byte, error) {
	remain := int64(1 << 62)
	if w.limits.MaxArchiveBytes > 0 {
		remain = w.limits.MaxArchiveBytes - w.decompressed
	}
	var buf bytes.Buffer
	const chunk = 1 << 20
	for {
		if err := w.check(0); err != nil {
			return nil, err
		}
		if remain <= 0 {
			w.stats.add("bytes")
			return nil, errBudget
		}
		n, err := io.CopyN(&buf, r, min(chunk, remain))
		w.decompressed += n
		remain -= n
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
