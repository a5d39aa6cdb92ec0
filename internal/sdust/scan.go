package sdust

import (
	"fmt"

	"github.com/gammazero/deque"
)

// Interval is a half-open range [Start, End) of sequence positions.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of positions covered by the interval.
func (iv Interval) Len() int { return iv.End - iv.Start }

func (iv Interval) String() string {
	return fmt.Sprintf("(%d, %d)", iv.Start, iv.End)
}

// MaskedBases sums the lengths of ivs.
func MaskedBases(ivs []Interval) int {
	n := 0
	for _, iv := range ivs {
		n += iv.Len()
	}
	return n
}

type scanner struct {
	threshold int
	win       window
	perfect   deque.Deque[perfectInterval]
	results   []Interval
}

// Scan returns the low-complexity intervals of seq, sorted by start and
// non-overlapping. windowSize is the DUST window length (W) and threshold
// the score threshold (T).
//
// Scan does not validate its input; see Validate. A window smaller than
// MinWindowSize yields no intervals.
func Scan(seq []byte, windowSize, threshold int) []Interval {
	if windowSize < MinWindowSize {
		return nil
	}
	s := &scanner{
		threshold: threshold,
		win:       newWindow(windowSize, threshold),
	}

	var (
		triplet uint8
		l       int // consecutive unambiguous bases
	)
	// one step past the end flushes whatever is still tracked
	for i := 0; i <= len(seq); i++ {
		b := Ambiguous
		if i < len(seq) {
			b = Encode(seq[i])
		}

		if b != Ambiguous {
			l++
			triplet = (triplet<<2 | b) & tripletMask
			if l < 3 {
				continue
			}
			start := max(0, l-windowSize) + i + 1 - l
			s.flush(start)
			s.win.add(triplet)
			if s.win.dense() {
				s.findPerfect(start)
			}
			continue
		}

		// an ambiguous base ends the run: nothing tracked can grow any more,
		// and the next run starts from an empty window
		start := max(0, l-windowSize+1) + i + 1 - l
		for s.perfect.Len() > 0 {
			start++
			s.flush(start)
		}
		l, triplet = 0, 0
		s.win.reset()
	}

	// window arithmetic can overshoot the end of the sequence by one
	for i := range s.results {
		s.results[i].End = min(s.results[i].End, len(seq))
	}
	return s.results
}

// ScanString is Scan for string input.
func ScanString(seq string, windowSize, threshold int) []Interval {
	return Scan([]byte(seq), windowSize, threshold)
}
