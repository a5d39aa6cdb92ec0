// Package mask applies low-complexity intervals to sequences and FASTA files.
package mask

import (
	"fmt"
	"strings"

	"github.com/dustmask/dustmask/internal/sdust"
)

// Mode selects how masked bases are written.
type Mode int

const (
	// Soft lowercases masked bases.
	Soft Mode = iota
	// Hard replaces masked bases with 'N'.
	Hard
)

func (m Mode) String() string {
	if m == Hard {
		return "hard"
	}
	return "soft"
}

// ParseMode parses "soft" or "hard" (case-insensitive). The empty string is Soft.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "soft":
		return Soft, nil
	case "hard":
		return Hard, nil
	}
	return Soft, fmt.Errorf("invalid mask mode %q (want soft or hard)", s)
}

// Apply returns a masked copy of seq. seq itself is never modified and
// intervals are clamped to its bounds.
func Apply(seq []byte, ivs []sdust.Interval, mode Mode) []byte {
	out := append([]byte(nil), seq...)
	for _, iv := range ivs {
		start, end := max(iv.Start, 0), min(iv.End, len(out))
		for i := start; i < end; i++ {
			if mode == Hard {
				out[i] = 'N'
			} else if c := out[i]; 'A' <= c && c <= 'Z' {
				out[i] = c + ('a' - 'A')
			}
		}
	}
	return out
}

// SoftMask lowercases the bases inside every interval.
func SoftMask(seq []byte, ivs []sdust.Interval) []byte { return Apply(seq, ivs, Soft) }

// HardMask replaces the bases inside every interval with 'N'.
func HardMask(seq []byte, ivs []sdust.Interval) []byte { return Apply(seq, ivs, Hard) }
