package sdust

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repeatSequence builds a sequence out of short random units repeated a few
// times each, which produces a mix of low- and high-complexity stretches.
func repeatSequence(rng *rand.Rand, alphabet string, n int) []byte {
	seq := make([]byte, 0, n+50)
	for len(seq) < n {
		unit := make([]byte, 1+rng.Intn(5))
		for i := range unit {
			unit[i] = alphabet[rng.Intn(len(alphabet))]
		}
		for k := 1 + rng.Intn(10); k > 0; k-- {
			seq = append(seq, unit...)
		}
	}
	return seq[:n]
}

var (
	propertyAlphabets = []string{"ACGT", "AC", "AT", "CG", "ACGTN", "ACGTNacgt"}
	propertyWindows   = []int{3, 4, 5, 8, 16, 32, 64}
	propertyScores    = []int{0, 5, 10, 20, 30, 40, 60}
)

func TestScan_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 150; iter++ {
		seq := repeatSequence(rng, propertyAlphabets[rng.Intn(len(propertyAlphabets))], 4+rng.Intn(200))
		window := propertyWindows[rng.Intn(len(propertyWindows))]

		prevMasked := -1
		for _, threshold := range propertyScores {
			got := Scan(seq, window, threshold)
			assert.Equal(t, got, Scan(seq, window, threshold), "scan must be deterministic")

			for i, iv := range got {
				require.True(t, 0 <= iv.Start && iv.Start < iv.End && iv.End <= len(seq),
					"interval %v out of bounds for %q", iv, seq)
				if i > 0 {
					require.Less(t, got[i-1].End, iv.Start, "intervals must be separated: %v", got)
				}
				for p := iv.Start; p < iv.End; p++ {
					require.NotEqual(t, Ambiguous, Encode(seq[p]), "interval %v spans an ambiguous base in %q", iv, seq)
				}
			}

			masked := MaskedBases(got)
			if prevMasked >= 0 {
				assert.LessOrEqual(t, masked, prevMasked, "raising the threshold must not mask more (%q, w=%d, t=%d)", seq, window, threshold)
			}
			prevMasked = masked
		}
	}
}

func TestScan_ResetIsolation(t *testing.T) {
	left := "CACACACACACACACACACACACACACA"
	right := "GGGGGGGGGGGGGGGGGGGGGGGG"
	seq := left + "N" + right

	got := ScanString(seq, 64, 20)
	for _, iv := range got {
		assert.False(t, iv.Start <= len(left) && len(left) < iv.End, "interval %v spans the N", iv)
	}
	// an ambiguous base separates the runs completely
	var want []Interval
	want = append(want, ScanString(left, 64, 20)...)
	for _, iv := range ScanString(right, 64, 20) {
		want = append(want, Interval{iv.Start + len(left) + 1, iv.End + len(left) + 1})
	}
	assert.Equal(t, want, got)
}
