package sdust

import (
	"errors"
	"fmt"
)

const (
	// MinSequenceLength is the shortest sequence accepted by Validate.
	MinSequenceLength = 4

	// MinWindowSize is the smallest window accepted by Validate.
	MinWindowSize = 3

	DefaultWindowSize     = 64
	DefaultScoreThreshold = 20
)

// ErrNegativeThreshold is returned for a score threshold below zero.
var ErrNegativeThreshold = errors.New("score threshold must not be negative")

// SequenceLengthError reports a sequence shorter than MinSequenceLength.
type SequenceLengthError struct {
	Length int
}

func (e *SequenceLengthError) Error() string {
	return fmt.Sprintf("sequence is too short, it must be at least %d characters long (got %d)", MinSequenceLength, e.Length)
}

// WindowSizeError reports a window smaller than MinWindowSize.
type WindowSizeError struct {
	WindowSize int
}

func (e *WindowSizeError) Error() string {
	return fmt.Sprintf("invalid window size '%d', must be at least '%d'", e.WindowSize, MinWindowSize)
}

// Validate checks the preconditions of Scan.
func Validate(seqLen, windowSize int) error {
	if seqLen < MinSequenceLength {
		return &SequenceLengthError{Length: seqLen}
	}
	return ValidateWindow(windowSize)
}

// ValidateWindow checks the window size alone, for callers that validate
// parameters before any sequence is read.
func ValidateWindow(windowSize int) error {
	if windowSize < MinWindowSize {
		return &WindowSizeError{WindowSize: windowSize}
	}
	return nil
}

// ValidateThreshold rejects negative score thresholds.
func ValidateThreshold(threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%w (got %d)", ErrNegativeThreshold, threshold)
	}
	return nil
}
