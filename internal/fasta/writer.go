package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DefaultLineWidth is the sequence line width used by most FASTA tooling.
const DefaultLineWidth = 60

// Writer writes FASTA records, wrapping sequence lines at a fixed width.
type Writer struct {
	w     *bufio.Writer
	width int
}

// NewWriter returns a Writer wrapping sequences at width bytes per line;
// width <= 0 writes each sequence on a single line.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: bufio.NewWriter(w), width: width}
}

// Write emits one record.
func (fw *Writer) Write(rec Record) error {
	if rec.ID != "" || rec.Description != "" {
		if err := fw.w.WriteByte('>'); err != nil {
			return err
		}
		if _, err := fw.w.WriteString(rec.Header()); err != nil {
			return err
		}
		if err := fw.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	seq := rec.Seq
	if fw.width <= 0 {
		if len(seq) == 0 {
			return nil
		}
		if _, err := fw.w.Write(seq); err != nil {
			return err
		}
		return fw.w.WriteByte('\n')
	}
	for len(seq) > 0 {
		n := min(fw.width, len(seq))
		if _, err := fw.w.Write(seq[:n]); err != nil {
			return err
		}
		if err := fw.w.WriteByte('\n'); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (fw *Writer) Flush() error { return fw.w.Flush() }

type gzipWriteCloser struct {
	*gzip.Writer
	dst io.Closer
}

func (g *gzipWriteCloser) Close() error {
	err := g.Writer.Close()
	if cerr := g.dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NewGzipWriter compresses everything written to w. Closing it flushes the
// gzip stream but leaves w open.
func NewGzipWriter(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }

// Create creates path for writing, compressing with gzip when the name ends
// in ".gz". "-" writes to stdout.
func Create(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		return &gzipWriteCloser{Writer: gzip.NewWriter(fh), dst: fh}, nil
	}
	return fh, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
