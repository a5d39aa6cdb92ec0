package dust

import (
	"fmt"

	"github.com/dustmask/dustmask/internal/mask"
	"github.com/dustmask/dustmask/internal/sdust"
)

// Re-exported validation errors.
type (
	SequenceLengthError = sdust.SequenceLengthError
	WindowSizeError     = sdust.WindowSizeError
)

// ErrNegativeThreshold is returned by New for a score threshold below zero.
var ErrNegativeThreshold = sdust.ErrNegativeThreshold

// Interval is a half-open range [Start, End) of low-complexity positions.
type Interval = sdust.Interval

const (
	DefaultWindowSize     = sdust.DefaultWindowSize
	DefaultScoreThreshold = sdust.DefaultScoreThreshold
)

const previewLen = 8

type settings struct {
	windowSize int
	threshold  int
}

// Option configures New.
type Option func(*settings)

// WithWindowSize sets the scanning window, 64 by default.
func WithWindowSize(n int) Option {
	return func(s *settings) { s.windowSize = n }
}

// WithScoreThreshold sets the score threshold, 20 by default.
func WithScoreThreshold(n int) Option {
	return func(s *settings) { s.threshold = n }
}

// Masker holds a sequence and the low-complexity intervals found in it.
// It is immutable after New returns.
type Masker struct {
	sequence   string
	windowSize int
	threshold  int
	intervals  []Interval
}

// New validates the parameters and scans sequence.
func New(sequence string, opts ...Option) (*Masker, error) {
	s := settings{windowSize: DefaultWindowSize, threshold: DefaultScoreThreshold}
	for _, o := range opts {
		o(&s)
	}
	if err := sdust.Validate(len(sequence), s.windowSize); err != nil {
		return nil, err
	}
	if s.threshold < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrNegativeThreshold, s.threshold)
	}
	return &Masker{
		sequence:   sequence,
		windowSize: s.windowSize,
		threshold:  s.threshold,
		intervals:  sdust.ScanString(sequence, s.windowSize, s.threshold),
	}, nil
}

func (m *Masker) Sequence() string    { return m.sequence }
func (m *Masker) WindowSize() int     { return m.windowSize }
func (m *Masker) ScoreThreshold() int { return m.threshold }

// Intervals returns a copy of the low-complexity intervals in ascending order.
func (m *Masker) Intervals() []Interval {
	return append([]Interval(nil), m.intervals...)
}

// NMaskedBases is the number of positions covered by Intervals.
func (m *Masker) NMaskedBases() int { return sdust.MaskedBases(m.intervals) }

// Mask returns the sequence with every interval lowercased, or replaced by
// 'N' when hard is set.
func (m *Masker) Mask(hard bool) string {
	mode := mask.Soft
	if hard {
		mode = mask.Hard
	}
	return string(mask.Apply([]byte(m.sequence), m.intervals, mode))
}

func (m *Masker) String() string {
	preview := m.sequence
	if len(preview) > previewLen {
		preview = preview[:previewLen] + "…"
	}
	return fmt.Sprintf("DustMasker(sequence: '%s', intervals: %v)", preview, m.intervals)
}
