package sdust

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func pairs(c [64]int) int {
	r := 0
	for _, n := range c {
		r += n * (n - 1) / 2
	}
	return r
}

func TestWindow_CountersTrackContents(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []int{3, 5, 16, 64} {
		for _, threshold := range []int{0, 10, 20, 40} {
			w := newWindow(size, threshold)
			for step := 0; step < 500; step++ {
				// skewed triplets so the dominance trim fires often
				t8 := uint8(rng.Intn(4))
				if rng.Intn(3) == 0 {
					t8 = uint8(rng.Intn(64))
				}
				w.add(t8)

				require.LessOrEqual(t, w.len(), size-2)
				require.LessOrEqual(t, w.l, w.len())

				var cw, cv [64]int
				for i := 0; i < w.len(); i++ {
					cw[w.triplets.At(i)]++
					if i >= w.len()-w.l {
						cv[w.triplets.At(i)]++
					}
				}
				require.Equal(t, cw, w.cw)
				require.Equal(t, cv, w.cv)
				require.Equal(t, pairs(cw), w.rw)
				require.Equal(t, pairs(cv), w.rv)
			}
		}
	}
}

func TestWindow_Reset(t *testing.T) {
	w := newWindow(10, 20)
	for _, t8 := range []uint8{1, 1, 1, 2, 3} {
		w.add(t8)
	}
	w.reset()
	require.Equal(t, 0, w.len())
	require.Equal(t, 0, w.l)
	require.Equal(t, 0, w.rw)
	require.Equal(t, 0, w.rv)
	require.Equal(t, [64]int{}, w.cw)
	require.Equal(t, 8, w.capacity)
}
