// Package fasta reads and writes FASTA streams, plain or gzip-compressed.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Record is one FASTA entry. ID is the first whitespace-delimited token of
// the header and Description whatever follows it.
type Record struct {
	ID          string
	Description string
	Seq         []byte
}

// Header returns the header line without the leading '>'.
func (r Record) Header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}

const maxLine = 64 * 1024 * 1024 // very long single-line sequences (64 MiB)

// Stream parses FASTA from r and calls emit once per record, in input order.
// Sequence lines are trimmed of surrounding whitespace and blank lines are
// skipped. Data preceding the first header becomes a record with an empty ID.
// Each emitted Seq is a fresh slice owned by the callee.
func Stream(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		rec     Record
		started bool
		seq     = make([]byte, 0, 1<<16)
	)
	flush := func() error {
		if !started && len(seq) == 0 {
			return nil
		}
		rec.Seq = append([]byte(nil), seq...)
		return emit(rec)
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			seq = seq[:0]
			rec = parseHeader(line[1:])
			started = true
			continue
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadAll collects every record of r.
func ReadAll(ctx context.Context, r io.Reader) ([]Record, error) {
	var out []Record
	err := Stream(ctx, r, func(rec Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}

func parseHeader(hdr []byte) Record {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return Record{ID: string(hdr[:i]), Description: string(bytes.TrimSpace(hdr[i+1:]))}
	}
	return Record{ID: string(hdr)}
}

var extensions = []string{".fa", ".fasta", ".fna", ".ffn", ".frn", ".fas", ".fsa", ".mfa", ".seq"}

// IsFASTAPath reports whether path carries a FASTA extension, optionally
// followed by ".gz".
func IsFASTAPath(path string) bool {
	p := strings.ToLower(filepath.Base(path))
	p = strings.TrimSuffix(p, ".gz")
	ext := filepath.Ext(p)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// gzipReadCloser closes both the decompressor and the underlying source.
type gzipReadCloser struct {
	*gzip.Reader
	src io.Closer
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.src.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NewReader returns a reader yielding the decompressed contents of r when r
// is gzip-compressed, and r's bytes unchanged otherwise.
func NewReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	sig, _ := br.Peek(2)
	if !IsGzip(sig) {
		return br, nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return gr, nil
}

// Open opens path for reading, decompressing gzip input. "-" reads stdin.
func Open(path string) (io.ReadCloser, error) {
	src := io.NopCloser(os.Stdin)
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		src = fh
	}
	br := bufio.NewReader(src)
	sig, _ := br.Peek(2)
	if !IsGzip(sig) {
		return struct {
			io.Reader
			io.Closer
		}{br, src}, nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return &gzipReadCloser{Reader: gr, src: src}, nil
}
