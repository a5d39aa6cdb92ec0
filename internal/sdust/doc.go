// Package sdust implements the symmetric DUST algorithm for finding
// low-complexity regions in nucleotide sequences.
//
// Scan walks a sequence once, keeping a sliding window of overlapping
// triplets and a small ordered set of candidate ("perfect") intervals. The
// result is a sorted list of merged, half-open intervals. Scores are kept as
// integers and every density comparison is cross-multiplied by 10, so the
// output is exact and reproducible.
//
// Input validation (minimum sequence length and window size) is not part of
// Scan; callers use Validate before scanning.
package sdust
