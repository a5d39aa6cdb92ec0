package mask

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/dustmask/dustmask/internal/sdust"
)

// Options configures masking of FASTA streams.
type Options struct {
	WindowSize int
	Threshold  int
	Mode       Mode
	LineWidth  int
}

// DefaultOptions returns soft masking with the standard scan parameters.
func DefaultOptions() Options {
	return Options{
		WindowSize: sdust.DefaultWindowSize,
		Threshold:  sdust.DefaultScoreThreshold,
		Mode:       Soft,
		LineWidth:  fasta.DefaultLineWidth,
	}
}

// Stats summarises a masking pass.
type Stats struct {
	Records int // records written
	Skipped int // records too short to scan, written unchanged
	Masked  int // bases covered by intervals
	Changed int // records whose bytes differ after masking
}

// WriteFASTA masks every record read from r and writes it to w.
func WriteFASTA(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Stats, error) {
	var st Stats
	if err := sdust.ValidateWindow(opts.WindowSize); err != nil {
		return st, err
	}
	fw := fasta.NewWriter(w, opts.LineWidth)
	err := fasta.Stream(ctx, r, func(rec fasta.Record) error {
		st.Records++
		if len(rec.Seq) < sdust.MinSequenceLength {
			st.Skipped++
			return fw.Write(rec)
		}
		ivs := sdust.Scan(rec.Seq, opts.WindowSize, opts.Threshold)
		st.Masked += sdust.MaskedBases(ivs)
		masked := Apply(rec.Seq, ivs, opts.Mode)
		if !bytes.Equal(masked, rec.Seq) {
			st.Changed++
		}
		rec.Seq = masked
		return fw.Write(rec)
	})
	if err != nil {
		return st, err
	}
	return st, fw.Flush()
}

// WouldChange reports whether masking path with opts would alter any record.
func WouldChange(path string, opts Options) (bool, error) {
	st, err := maskFile(path, io.Discard, opts)
	if err != nil {
		return false, err
	}
	return st.Changed > 0, nil
}

// ApplyFile masks path in place and reports whether anything changed. The
// file is replaced atomically and stays gzip-compressed when it was before.
// Files that would not change are left untouched.
func ApplyFile(path string, opts Options) (bool, error) {
	changed, err := WouldChange(path, opts)
	if err != nil || !changed {
		return false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dustmask-*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	var (
		out io.Writer = tmp
		gz  io.WriteCloser
	)
	if fasta.IsGzip(raw) {
		gz = fasta.NewGzipWriter(tmp)
		out = gz
	}
	if _, err := maskReader(bytes.NewReader(raw), out, opts); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("mask %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			_ = tmp.Close()
			return false, err
		}
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return false, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, err
	}
	return true, nil
}

func maskFile(path string, w io.Writer, opts Options) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = f.Close() }()
	return maskReader(f, w, opts)
}

func maskReader(r io.Reader, w io.Writer, opts Options) (Stats, error) {
	src, err := fasta.NewReader(r)
	if err != nil {
		return Stats{}, err
	}
	return WriteFASTA(context.Background(), src, w, opts)
}
